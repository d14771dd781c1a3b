package completion

import (
	"strings"
	"time"
)

// Role identifies who produced a message sent to a provider.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged text entry in a request.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Text: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// Request is the input to ProviderAdapter.Complete.
type Request struct {
	Model       string            `json:"model"`
	Messages    []Message         `json:"messages"`
	Provider    string            `json:"provider,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PromptRequest builds a single-user-message request, which is the shape
// every agent stage sends.
func PromptRequest(model, prompt string, temperature float64) Request {
	return Request{
		Model:       model,
		Messages:    []Message{UserMessage(prompt)},
		Temperature: &temperature,
	}
}

// SystemPrompt joins the text of all system messages.
func (r Request) SystemPrompt() string {
	var parts []string
	for _, m := range r.Messages {
		if m.Role == RoleSystem && m.Text != "" {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// PromptText flattens the non-system messages into one prompt string for
// backends that only accept raw text. Assistant turns are tagged so the model
// can tell them apart from user input.
func (r Request) PromptText() string {
	var parts []string
	for _, m := range r.Messages {
		switch m.Role {
		case RoleUser:
			parts = append(parts, m.Text)
		case RoleAssistant:
			if m.Text != "" {
				parts = append(parts, "[Assistant]: "+m.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// FinishReason describes why generation stopped.
type FinishReason struct {
	Reason string `json:"reason"` // "stop", "length", "content_filter", "other"
	Raw    string `json:"raw,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns a new Usage that is the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		TotalTokens:  u.TotalTokens + other.TotalTokens,
	}
}

// Response is the output of ProviderAdapter.Complete.
type Response struct {
	ID           string        `json:"id"`
	Model        string        `json:"model"`
	Provider     string        `json:"provider"`
	Message      Message       `json:"message"`
	FinishReason FinishReason  `json:"finish_reason"`
	Usage        Usage         `json:"usage"`
	Latency      time.Duration `json:"latency,omitempty"`
}

// Text returns the generated text.
func (r Response) Text() string {
	return r.Message.Text
}

// estimateTokens gives a rough token count for backends that do not report
// usage.
func estimateTokens(text string) int {
	return len(text) / 4
}
