package llm

import "datasense-be/pkg/chat"

// FromTurns converts a chat history to provider messages, preserving order.
func FromTurns(history []chat.Turn) []Message {
	messages := make([]Message, 0, len(history))
	for _, turn := range history {
		role := RoleUser
		if turn.Role == chat.RoleAssistant {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: turn.Content})
	}
	return messages
}
