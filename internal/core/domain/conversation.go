package domain

import "time"

// Role is the speaker of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one entry in a conversation history.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
	Metadata  map[string]any
}

// ConversationState is the per-session agent state.
// History is append-only; only Clear removes entries.
type ConversationState struct {
	// SessionID identifies the conversation.
	SessionID string

	// History holds turns in order.
	History []Turn

	// CurrentTemplate is the template kind of the latest turn.
	CurrentTemplate string

	// Data is the accumulated document data for the session.
	Data map[string]any

	// ClarificationRounds counts consecutive clarification responses.
	ClarificationRounds int
}

// NewConversationState returns an empty session state.
func NewConversationState(sessionID string) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		Data:      map[string]any{},
	}
}

// Append adds a turn to the history.
func (c *ConversationState) Append(role Role, content string, metadata map[string]any) {
	c.History = append(c.History, Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
}

// Clear resets history, accumulated data and counters together.
func (c *ConversationState) Clear() {
	c.History = nil
	c.Data = map[string]any{}
	c.CurrentTemplate = ""
	c.ClarificationRounds = 0
}

// ResponseType classifies an agent response.
type ResponseType string

// Agent response types.
const (
	ResponseClarification ResponseType = "clarification"
	ResponseDocument      ResponseType = "document"
	ResponseError         ResponseType = "error"
)

// AgentResponse is the result of one conversational turn.
type AgentResponse struct {
	Content       string
	Type          ResponseType
	RequiresInput bool
	MissingInfo   []string
	Metadata      map[string]any
}

// TurnRequest is one user message to the agent.
type TurnRequest struct {
	// Message is the user's text.
	Message string

	// TemplateKind is the template the user is working in.
	TemplateKind string

	// ProjectContext is optional background passed to the model.
	ProjectContext map[string]any
}
