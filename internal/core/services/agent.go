package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// Ensure Agent implements the interfaces.
var (
	_ driving.Agent           = (*Agent)(nil)
	_ driven.PromptStoreAware = (*Agent)(nil)
)

// DefaultTemplateKind is used when a turn names no template.
const DefaultTemplateKind = "lean"

// draftDataKey holds the latest generated draft in session data.
const draftDataKey = "draft"

var agentLog = logger.For("agent")

// AgentConfig holds conversational agent limits.
type AgentConfig struct {
	// MaxClarificationRounds is how many clarifications in a row are given
	// before the agent generates with what it has. Zero means no limit.
	MaxClarificationRounds int

	// Timeout bounds each LLM call.
	Timeout time.Duration

	// MaxTokens caps each reply.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// AgentConfigFrom derives agent limits from application settings.
func AgentConfigFrom(s *domain.AppSettings) AgentConfig {
	return AgentConfig{
		MaxClarificationRounds: s.Agent.MaxClarificationRounds,
		Timeout:                s.Generation.Timeout,
		MaxTokens:              s.LLM.MaxTokens,
		Temperature:            s.LLM.Temperature,
	}
}

// session pairs a conversation with the lock that serialises its turns.
type session struct {
	mu    sync.Mutex
	state *domain.ConversationState
}

// Agent is the conversational document assistant.
//
// Sessions are independent. Turns within one session are serialised, and
// Clear waits for an in-flight turn so history and data are reset together.
type Agent struct {
	llm       driven.LLMService
	validator *Validator
	templates *TemplateStore
	prompts   driven.PromptStore
	cfg       AgentConfig

	mu       sync.Mutex
	sessions map[string]*session
}

// NewAgent creates an agent. llm may be nil; turns that pass the
// completeness gate then return an error response.
func NewAgent(llm driven.LLMService, validator *Validator, templates *TemplateStore, cfg AgentConfig) *Agent {
	if validator == nil {
		validator = NewValidator()
	}
	return &Agent{
		llm:       llm,
		validator: validator,
		templates: templates,
		cfg:       cfg,
		sessions:  make(map[string]*session),
	}
}

// SetPromptStore sets the store used for customisable system prompts.
func (a *Agent) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// session returns the session for id, creating it when create is set.
func (a *Agent) session(id string, create bool) (*session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[id]
	if !ok && create {
		s = &session{state: domain.NewConversationState(id)}
		a.sessions[id] = s
		ok = true
	}
	return s, ok
}

// Turn handles one user message. Both the user message and the reply are
// appended to history before Turn returns, including on generation errors.
func (a *Agent) Turn(ctx context.Context, sessionID string, req domain.TurnRequest) (*domain.AgentResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.NewValidationError("session_id", "Session ID is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.NewValidationError("message", "Message is required")
	}

	kind := strings.ToLower(strings.TrimSpace(req.TemplateKind))
	if kind == "" {
		kind = DefaultTemplateKind
	}

	s, _ := a.session(sessionID, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	state.Append(domain.RoleUser, req.Message, nil)
	state.CurrentTemplate = kind

	resp := a.respond(ctx, state, kind, req)

	state.Append(domain.RoleAssistant, resp.Content, resp.Metadata)
	return resp, nil
}

func (a *Agent) respond(
	ctx context.Context,
	state *domain.ConversationState,
	kind string,
	req domain.TurnRequest,
) *domain.AgentResponse {
	result := a.validator.Validate(userText(state))

	limit := a.cfg.MaxClarificationRounds
	if !result.IsSufficient && a.validator.IsUnderspecified(userText(state)) &&
		(limit <= 0 || state.ClarificationRounds < limit) {
		state.ClarificationRounds++
		questions := a.validator.ClarificationQuestions(result.MissingInfo)
		return &domain.AgentResponse{
			Content:       BuildClarification(a.prompts, result.MissingInfo, questions),
			Type:          domain.ResponseClarification,
			RequiresInput: true,
			MissingInfo:   result.MissingInfo,
			Metadata: map[string]any{
				"template_type":        kind,
				"completeness_score":   result.CompletenessScore,
				"clarification_rounds": state.ClarificationRounds,
			},
		}
	}
	state.ClarificationRounds = 0

	var tpl *domain.Template
	if a.templates != nil {
		t, err := a.templates.Load(ctx, kind)
		if err != nil {
			// Generate without a template structure
			agentLog.Warn("template %q unavailable: %v", kind, err)
		} else {
			tpl = t
		}
	}

	content, err := a.generate(ctx, state, tpl, kind, req, result.MissingInfo)
	if err != nil {
		agentLog.Error("turn in session %s failed: %v", state.SessionID, err)
		return &domain.AgentResponse{
			Content: fmt.Sprintf("I encountered an error while generating the document: %v. "+
				"Please try again or provide more specific information.", err),
			Type:     domain.ResponseError,
			Metadata: map[string]any{"template_type": kind},
		}
	}

	state.Data[draftDataKey] = content

	sections := []string{}
	if tpl != nil {
		sections = tpl.Keys()
	}
	return &domain.AgentResponse{
		Content: content,
		Type:    domain.ResponseDocument,
		Metadata: map[string]any{
			"template_type":      kind,
			"sections_generated": sections,
		},
	}
}

func (a *Agent) generate(
	ctx context.Context,
	state *domain.ConversationState,
	tpl *domain.Template,
	kind string,
	req domain.TurnRequest,
	missing []string,
) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	draft, _ := state.Data[draftDataKey].(string)
	system := BuildSystemPrompt(a.prompts, tpl, draft, missing)
	if len(req.ProjectContext) > 0 {
		system += "\n\nProject Context:\n" + marshalIndent(req.ProjectContext)
	}

	messages := []driven.ChatMessage{{Role: string(domain.RoleSystem), Content: system}}
	last := len(state.History) - 1
	for i, t := range state.History {
		content := t.Content
		if i == last {
			content = fmt.Sprintf("Create document content using %s template: %s", kind, t.Content)
		}
		messages = append(messages, driven.ChatMessage{Role: string(t.Role), Content: content})
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	reply, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &domain.GenerationError{Document: kind, Err: fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)}
		}
		return "", &domain.GenerationError{Document: kind, Err: err}
	}
	return reply, nil
}

// userText joins every user message in the session.
func userText(state *domain.ConversationState) string {
	var parts []string
	for _, t := range state.History {
		if t.Role == domain.RoleUser {
			parts = append(parts, t.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// History returns a copy of the session's turns.
func (a *Agent) History(sessionID string) ([]domain.Turn, error) {
	s, ok := a.session(sessionID, false)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Turn, len(s.state.History))
	copy(out, s.state.History)
	return out, nil
}

// Clear empties the session's history and accumulated data.
func (a *Agent) Clear(sessionID string) error {
	s, ok := a.session(sessionID, false)
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.mu.Lock()
	s.state.Clear()
	s.mu.Unlock()
	return nil
}

// Sessions returns the IDs of all known sessions in sorted order.
func (a *Agent) Sessions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]string, 0, len(a.sessions))
	for id := range a.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
