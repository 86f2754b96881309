package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	ErrEmptyMessage = errors.New("message must not be empty")
	ErrInvalidRole  = errors.New("invalid chat role")
)

// Turn is one entry of a conversation history. Turns are never mutated once
// they are part of a history.
type Turn struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

func (t Turn) Validate() error {
	if t.Role != RoleUser && t.Role != RoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidRole, t.Role)
	}
	return nil
}

// TurnInput is the incoming user turn. Clients send either a bare string or a
// {role, content} object; exactly one of Text and Structured is set after decoding.
type TurnInput struct {
	Text       *string
	Structured *Turn
}

func TextInput(text string) TurnInput {
	return TurnInput{Text: &text}
}

func StructuredInput(turn Turn) TurnInput {
	return TurnInput{Structured: &turn}
}

func (in *TurnInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*in = TurnInput{}
		return nil
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*in = TurnInput{Text: &text}
		return nil
	case '{':
		var turn Turn
		if err := json.Unmarshal(data, &turn); err != nil {
			return err
		}
		*in = TurnInput{Structured: &turn}
		return nil
	default:
		return fmt.Errorf("message must be a string or a {role, content} object")
	}
}

func (in TurnInput) MarshalJSON() ([]byte, error) {
	switch {
	case in.Structured != nil:
		return json.Marshal(in.Structured)
	case in.Text != nil:
		return json.Marshal(*in.Text)
	default:
		return []byte("null"), nil
	}
}

// Normalize converts the input to the user Turn that gets appended to history.
func (in TurnInput) Normalize() (Turn, error) {
	var turn Turn
	switch {
	case in.Structured != nil:
		turn = *in.Structured
		if turn.Role == "" {
			turn.Role = RoleUser
		}
	case in.Text != nil:
		turn = Turn{Role: RoleUser, Content: *in.Text}
	default:
		return Turn{}, ErrEmptyMessage
	}

	if turn.Role != RoleUser {
		return Turn{}, fmt.Errorf("%w: new turn must come from the user, got %q", ErrInvalidRole, turn.Role)
	}
	if strings.TrimSpace(turn.Content) == "" {
		return Turn{}, ErrEmptyMessage
	}
	return turn, nil
}

// AppendTurn returns a new history with turn appended. The input slice is not modified.
func AppendTurn(history []Turn, turn Turn) []Turn {
	out := make([]Turn, len(history), len(history)+1)
	copy(out, history)
	return append(out, turn)
}

// LastUserContent returns the content of the most recent user turn.
func LastUserContent(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content
		}
	}
	return ""
}
