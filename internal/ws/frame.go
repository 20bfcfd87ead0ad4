package ws

import (
	"fmt"
	"strings"
)

// STOMP commands used by the client side of the protocol.
const (
	cmdConnect     = "CONNECT"
	cmdConnected   = "CONNECTED"
	cmdSubscribe   = "SUBSCRIBE"
	cmdUnsubscribe = "UNSUBSCRIBE"
	cmdMessage     = "MESSAGE"
	cmdError       = "ERROR"
	cmdDisconnect  = "DISCONNECT"
)

// frame is one STOMP 1.2 frame. Header order is not significant;
// repeated headers keep the first value, as STOMP 1.2 requires.
type frame struct {
	Command string
	Headers map[string]string
	Body    string
}

func newFrame(command string, headers map[string]string) frame {
	if headers == nil {
		headers = map[string]string{}
	}
	return frame{Command: command, Headers: headers}
}

// encode renders the frame as a NUL-terminated wire message.
func (f frame) encode() []byte {
	var b strings.Builder
	b.WriteString(f.Command)
	b.WriteByte('\n')
	for k, v := range f.Headers {
		b.WriteString(escapeHeader(k))
		b.WriteByte(':')
		b.WriteString(escapeHeader(v))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(f.Body)
	b.WriteByte(0)
	return []byte(b.String())
}

// parseFrame decodes a wire message. Heart-beat messages (a lone
// newline) come back as an empty command with ok=false.
func parseFrame(data []byte) (frame, bool, error) {
	text := strings.TrimSuffix(string(data), "\x00")
	if strings.TrimRight(text, "\r\n") == "" {
		return frame{}, false, nil
	}

	head, body, found := strings.Cut(text, "\n\n")
	if !found {
		return frame{}, false, fmt.Errorf("malformed frame: missing header terminator")
	}

	lines := strings.Split(head, "\n")
	f := frame{Command: strings.TrimRight(lines[0], "\r"), Headers: map[string]string{}, Body: body}
	if f.Command == "" {
		return frame{}, false, fmt.Errorf("malformed frame: empty command")
	}

	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return frame{}, false, fmt.Errorf("malformed header line %q", line)
		}
		k, v = unescapeHeader(k), unescapeHeader(v)
		if _, dup := f.Headers[k]; !dup {
			f.Headers[k] = v
		}
	}
	return f, true, nil
}

var headerEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`, ":", `\c`)

var headerUnescaper = strings.NewReplacer(`\r`, "\r", `\n`, "\n", `\c`, ":", `\\`, `\`)

func escapeHeader(s string) string   { return headerEscaper.Replace(s) }
func unescapeHeader(s string) string { return headerUnescaper.Replace(s) }
