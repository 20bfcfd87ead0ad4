package api

import (
	"context"
	"fmt"
	"net/url"
)

// ChatSession is one conversation with the chat-to-query assistant
type ChatSession struct {
	ID        int64  `json:"id"`
	OrgID     string `json:"orgId"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ChatMessage is one turn of a chat session. Assistant turns may carry
// the generated query and its results.
type ChatMessage struct {
	ID           int64  `json:"id"`
	Role         string `json:"role"`
	Content      string `json:"content"`
	SoqlQuery    string `json:"soqlQuery,omitempty"`
	QueryResults string `json:"queryResults,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	TokensUsed   int    `json:"tokensUsed,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// GetChatSessions lists chat sessions for the org
func (c *Client) GetChatSessions(ctx context.Context, orgID string) ([]ChatSession, error) {
	var sessions []ChatSession
	err := c.get(ctx, "/org-chat/sessions?orgId="+url.QueryEscape(orgID), &sessions)
	return sessions, err
}

// CreateChatSession starts a new chat session
func (c *Client) CreateChatSession(ctx context.Context, orgID, userID string) (*ChatSession, error) {
	var session ChatSession
	path := fmt.Sprintf("/org-chat/sessions?orgId=%s&userId=%s",
		url.QueryEscape(orgID), url.QueryEscape(userID))
	if err := c.post(ctx, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteChatSession removes a session and its messages
func (c *Client) DeleteChatSession(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/org-chat/sessions/%d", id))
}

// GetChatMessages lists the messages of a session, oldest first
func (c *Client) GetChatMessages(ctx context.Context, sessionID int64) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := c.get(ctx, fmt.Sprintf("/org-chat/sessions/%d/messages", sessionID), &messages)
	return messages, err
}

// SendChatMessage posts a user turn and returns the assistant's reply
func (c *Client) SendChatMessage(ctx context.Context, sessionID int64, orgID, content string) (*ChatMessage, error) {
	var reply ChatMessage
	path := fmt.Sprintf("/org-chat/sessions/%d/messages?orgId=%s", sessionID, url.QueryEscape(orgID))
	if err := c.post(ctx, path, map[string]string{"content": content}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
