package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orgforge/orgforge/internal/ux"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the active org's data",
}

// chatSessionsCmd lists conversations
var chatSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List chat sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		sessions, err := a.Client.GetChatSessions(cmd.Context(), orgID)
		if err != nil {
			return ux.FormatError(err, "listing chat sessions")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(sessions)
		}

		table := ux.NewTable("ID", "TITLE", "CREATED")
		for _, s := range sessions {
			table.AddRow(strconv.FormatInt(s.ID, 10), s.Title, s.CreatedAt)
		}
		return f.Format(table)
	},
}

// chatAskCmd sends a question, creating a session when needed
var chatAskCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask a question about the org's data",
	Long: `Ask a natural-language question. The assistant answers with a
generated query and its results.

Without --session a new session is created.

Examples:
  orgforge chat ask how many open cases are older than 30 days
  orgforge chat ask --session 12 break that down by owner`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetInt64("session")

		a, orgID, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		if sessionID == 0 {
			userID := ""
			if user := a.Auth.User(); user != nil {
				userID = user.ID
			}
			session, err := a.Client.CreateChatSession(cmd.Context(), orgID, userID)
			if err != nil {
				return ux.FormatError(err, "creating chat session")
			}
			sessionID = session.ID
			fmt.Fprintf(cmd.OutOrStdout(), "Session #%d\n", sessionID)
		}

		reply, err := a.Client.SendChatMessage(cmd.Context(), sessionID, orgID, strings.Join(args, " "))
		if err != nil {
			return ux.FormatError(err, "sending message")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, reply.Content)
		if reply.SoqlQuery != "" {
			fmt.Fprintf(out, "\nQuery: %s\n", reply.SoqlQuery)
		}
		if reply.QueryResults != "" {
			fmt.Fprintln(out, reply.QueryResults)
		}
		if reply.ErrorMessage != "" {
			fmt.Fprintf(out, "Error: %s\n", reply.ErrorMessage)
		}
		return nil
	},
}

// chatHistoryCmd replays a session
var chatHistoryCmd = &cobra.Command{
	Use:   "history <sessionId>",
	Short: "Show the messages of a chat session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}

		a, _, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		messages, err := a.Client.GetChatMessages(cmd.Context(), id)
		if err != nil {
			return ux.FormatError(err, "fetching messages")
		}

		f, err := formatter(cmd)
		if err != nil {
			return err
		}
		if outputFlag != "text" {
			return f.Format(messages)
		}

		out := cmd.OutOrStdout()
		for _, m := range messages {
			fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
			if m.SoqlQuery != "" {
				fmt.Fprintf(out, "       %s\n", m.SoqlQuery)
			}
		}
		return nil
	},
}

// chatDeleteCmd removes a session
var chatDeleteCmd = &cobra.Command{
	Use:   "delete <sessionId>",
	Short: "Delete a chat session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}

		a, _, err := activeOrg(cmd)
		if err != nil {
			return err
		}

		if err := a.Client.DeleteChatSession(cmd.Context(), id); err != nil {
			return ux.FormatError(err, "deleting session")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Session #%d deleted\n", id)
		return nil
	},
}

func init() {
	chatAskCmd.Flags().Int64("session", 0, "continue an existing session")

	chatCmd.AddCommand(chatSessionsCmd, chatAskCmd, chatHistoryCmd, chatDeleteCmd)
	rootCmd.AddCommand(chatCmd)
}
