package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/service"

	"go.uber.org/zap"
)

func newAdvisorService(advisor *mockAdvisorCaller, expenses *mockExpenseStore, profiles *mockProfileStore) *service.AdvisorService {
	return service.NewAdvisorService(
		advisor,
		expenses,
		profiles,
		observability.NewMetrics(),
		zap.NewNop(),
		time.UTC,
	).WithClock(fixedClock())
}

func TestAdvisorAsk_Success(t *testing.T) {
	advisor := &mockAdvisorCaller{response: &domain.AdvisorResponse{
		Answer:     "You can safely spend about $28 per day this month.",
		Confidence: 0.9,
		TokensUsed: domain.TokenUsage{PromptTokens: 400, CompletionTokens: 120, TotalTokens: 520},
	}}
	svc := newAdvisorService(advisor, &mockExpenseStore{expenses: septemberExpenses()}, &mockProfileStore{profile: sampleProfile()})

	result, err := svc.Ask(context.Background(), "user-1", &domain.AskAdvisorRequest{Message: "How much can I spend?"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Answer == "" {
		t.Error("expected an answer")
	}
	if result.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %f", result.Confidence)
	}
	if result.ConversationID == "" {
		t.Error("expected a generated conversation id")
	}

	// The advisor must see the same numbers the dashboard shows.
	if advisor.lastReq == nil || advisor.lastReq.Snapshot == nil {
		t.Fatal("expected a snapshot on the advisor request")
	}
	if advisor.lastReq.Snapshot.TotalSpent != 150 {
		t.Errorf("expected snapshot total spent 150, got %f", advisor.lastReq.Snapshot.TotalSpent)
	}
	if !advisor.lastReq.Snapshot.IsPersonalized {
		t.Error("expected personalized snapshot")
	}
}

func TestAdvisorAsk_KeepsConversationID(t *testing.T) {
	advisor := &mockAdvisorCaller{response: &domain.AdvisorResponse{Answer: "ok"}}
	svc := newAdvisorService(advisor, &mockExpenseStore{}, &mockProfileStore{})

	result, err := svc.Ask(context.Background(), "user-1", &domain.AskAdvisorRequest{
		Message:        "hello",
		ConversationID: "conv-42",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ConversationID != "conv-42" {
		t.Errorf("expected conversation id 'conv-42', got '%s'", result.ConversationID)
	}
}

func TestAdvisorAsk_MessageValidation(t *testing.T) {
	svc := newAdvisorService(&mockAdvisorCaller{}, &mockExpenseStore{}, &mockProfileStore{})

	for _, msg := range []string{"", strings.Repeat("x", 2001)} {
		_, err := svc.Ask(context.Background(), "user-1", &domain.AskAdvisorRequest{Message: msg})
		var vErr *domain.ErrValidation
		if !errors.As(err, &vErr) {
			t.Errorf("expected validation error for message of length %d, got %v", len(msg), err)
		}
	}
}

func TestAdvisorAsk_AgentError(t *testing.T) {
	advisor := &mockAdvisorCaller{err: errors.New("agent unavailable")}
	svc := newAdvisorService(advisor, &mockExpenseStore{}, &mockProfileStore{})

	_, err := svc.Ask(context.Background(), "user-1", &domain.AskAdvisorRequest{Message: "hello"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
