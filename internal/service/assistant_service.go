package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todo_webapp/internal/assistant"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

const (
	maxHistoryTurns = 20
	emptyReply      = "I'm sorry, I couldn't generate a response."
)

const slashInstruction = `[SYSTEM INSTRUCTION: You are an AI Task Manager. The user is using a slash command.
- IF they use /add: Check if they provided a title and description. If NOT, do NOT create the task yet; instead, ASK the user to provide the missing title/description.
- IF they use /add todo user: Immediately SHOW a list of all existing tasks.
- IF intent is ambiguous: Always ASK for clarification.
- INTERACTIVE FORMATTING: Whenever you list tasks, you MUST use the format: "[ID: #] Task Title".
User Message: ]

`

// Assistant is satisfied by *assistant.Client.
type Assistant interface {
	Ask(ctx context.Context, req assistant.Request) (string, error)
}

type AskInput struct {
	Prompt  string
	History []assistant.Message
}

type AskResult struct {
	Reply    string           `json:"reply"`
	Activity *domain.Activity `json:"activity,omitempty"`
}

type AssistantService struct {
	client   Assistant
	activity ActivityStore
	audit    *AuditService
	events   EventPublisher
	now      func() time.Time
}

// NewAssistantService wires the proxy. client may be nil when no assistant
// is configured; Ask then fails with ErrAssistantDisabled.
func NewAssistantService(client Assistant, activity ActivityStore, audit *AuditService, events EventPublisher) *AssistantService {
	if activity == nil {
		activity = NewMemoryActivityStore()
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &AssistantService{
		client:   client,
		activity: activity,
		audit:    audit,
		events:   events,
		now:      time.Now,
	}
}

func (s *AssistantService) Enabled() bool {
	return s.client != nil
}

func (s *AssistantService) Ask(ctx context.Context, userID string, in AskInput) (*AskResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, domain.Invalid("prompt", "is required")
	}
	if !s.Enabled() {
		return nil, domain.ErrAssistantDisabled
	}

	actions, err := s.activity.List(ctx, userID)
	if err != nil {
		// history is advisory; ask without it
		logger.WithContext(ctx).Warn("failed to load assistant activity", "error", err)
		actions = nil
	}

	req := assistant.Request{
		Prompt:        buildPrompt(prompt),
		UserID:        userID,
		History:       lastTurns(in.History),
		ActionHistory: toActions(actions),
	}

	reply, err := s.client.Ask(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reply) == "" {
		reply = emptyReply
	}

	res := &AskResult{Reply: reply}
	if a, ok := domain.ClassifyReply(reply, s.now().UTC()); ok {
		if err := s.activity.Append(ctx, userID, a); err != nil {
			logger.WithContext(ctx).Warn("failed to record assistant activity", "error", err)
		}
		res.Activity = &a
	}

	s.audit.Log(ctx, userID, domain.AuditActionAssistantAsk, domain.AuditCategoryAssistant, map[string]any{
		"slash_command": strings.HasPrefix(prompt, "/"),
		"activity":      res.Activity != nil,
	})
	s.events.Publish(userID, domain.TaskEvent{Type: domain.EventTasksRefresh, At: s.now().UTC()})
	return res, nil
}

func (s *AssistantService) Activity(ctx context.Context, userID string) ([]domain.Activity, error) {
	list, err := s.activity.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return list, nil
}

func (s *AssistantService) ClearActivity(ctx context.Context, userID string) error {
	return s.activity.Clear(ctx, userID)
}

func buildPrompt(prompt string) string {
	if strings.HasPrefix(prompt, "/") {
		return slashInstruction + prompt
	}
	return prompt
}

func lastTurns(history []assistant.Message) []assistant.Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	out := make([]assistant.Message, len(history))
	copy(out, history)
	return out
}

func toActions(list []domain.Activity) []assistant.Action {
	out := make([]assistant.Action, 0, len(list))
	for _, a := range list {
		out = append(out, assistant.Action{
			Type:      a.Type,
			Details:   a.Details,
			Timestamp: a.Timestamp.Format("15:04"),
		})
	}
	return out
}
