// Package models contains shared data types for the localchat client.
package models

import "strings"

// Message roles as they appear on the wire and in storage
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidRole reports whether role is one of system, user or assistant
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// TitleFromPrompt derives a conversation title from the first user message
func TitleFromPrompt(prompt string) string {
	title := strings.TrimSpace(prompt)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	if len(title) > 50 {
		title = title[:50] + "..."
	}
	return title
}
