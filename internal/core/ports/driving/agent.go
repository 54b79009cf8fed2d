package driving

import (
	"context"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

// Agent is the conversational document assistant.
type Agent interface {
	// Turn handles one user message in a session.
	// Generation failures come back as a ResponseError response, not an error.
	Turn(ctx context.Context, sessionID string, req domain.TurnRequest) (*domain.AgentResponse, error)

	// History returns a copy of the session's turns.
	History(sessionID string) ([]domain.Turn, error)

	// Clear empties the session's history and accumulated data together.
	Clear(sessionID string) error

	// Sessions lists known session IDs in sorted order.
	Sessions() []string
}
