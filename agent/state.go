package agent

import (
	"time"

	"github.com/google/uuid"
)

// Role tags the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserMessage creates a Message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// AssistantMessage creates a Message authored by the model.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// State is the value threaded through one run of the loop. It is created
// fresh for every user turn and never shared between runs.
type State struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`

	Messages        []Message `json:"messages"`
	CurrentPlan     string    `json:"current_plan"`
	ExecutionResult string    `json:"execution_result"`
	Evaluation      string    `json:"evaluation"`
	NextAction      Action    `json:"next_action"`

	// IterationCount counts Critic visits. It only ever grows.
	IterationCount int `json:"iteration_count"`

	// IsComplete latches to true on the first satisfactory verdict.
	IsComplete bool `json:"is_complete"`

	// ToolsUsed lists simulated capabilities in detection order. Repeated
	// Executor visits may record the same tool more than once.
	ToolsUsed []string `json:"tools_used"`

	Verdict     Verdict       `json:"verdict,omitempty"`
	StageVisits map[Stage]int `json:"stage_visits,omitempty"`
}

// NewState seeds a run with a single user message.
func NewState(userInput string) State {
	return State{
		RunID:       uuid.New().String(),
		StartedAt:   time.Now(),
		Messages:    []Message{UserMessage(userInput)},
		NextAction:  ActionPlan,
		StageVisits: make(map[Stage]int),
	}
}

// LastUserMessage returns the content of the most recent user message.
func (s State) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// RecentMessages returns up to the last n messages.
func (s State) RecentMessages(n int) []Message {
	if n <= 0 {
		return nil
	}
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// UniqueTools returns ToolsUsed without repeats, keeping first-seen order.
func (s State) UniqueTools() []string {
	seen := make(map[string]bool, len(s.ToolsUsed))
	var out []string
	for _, name := range s.ToolsUsed {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Visits reports how many times stage has run in this state's run.
func (s State) Visits(stage Stage) int {
	return s.StageVisits[stage]
}

// clone returns a copy whose slices and map do not alias s.
func (s State) clone() State {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	out.ToolsUsed = append([]string(nil), s.ToolsUsed...)
	out.StageVisits = make(map[Stage]int, len(s.StageVisits))
	for k, v := range s.StageVisits {
		out.StageVisits[k] = v
	}
	return out
}
