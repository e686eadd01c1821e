package service

import (
	"context"
	"fmt"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var advisorTracer = otel.Tracer("service/advisor")

const maxAdvisorMessageLength = 2000

// AdvisorService sends budget questions to the external AI advisor,
// attaching a snapshot built by the same aggregation the dashboard
// uses so the advisor's numbers match the UI.
type AdvisorService struct {
	advisor  port.AdvisorCaller
	expenses port.ExpenseStore
	profiles port.OnboardingStore
	metrics  *observability.Metrics
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewAdvisorService creates the advisor service.
func NewAdvisorService(
	advisor port.AdvisorCaller,
	expenses port.ExpenseStore,
	profiles port.OnboardingStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
	loc *time.Location,
) *AdvisorService {
	if loc == nil {
		loc = time.UTC
	}
	return &AdvisorService{
		advisor:  advisor,
		expenses: expenses,
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests pin the reference date.
func (s *AdvisorService) WithClock(now func() time.Time) *AdvisorService {
	s.now = now
	return s
}

// Ask forwards the user's question with a current budget snapshot.
func (s *AdvisorService) Ask(ctx context.Context, userID string, req *domain.AskAdvisorRequest) (*domain.AdvisorResult, error) {
	ctx, span := advisorTracer.Start(ctx, "AdvisorService.Ask")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if req.Message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "required"}
	}
	if len(req.Message) > maxAdvisorMessageLength {
		return nil, &domain.ErrValidation{Field: "message", Message: "too long"}
	}

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("advisor", time.Since(start)) }()

	snapshot, err := s.buildSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.advisor.Call(ctx, &domain.AdvisorRequest{
		UserID:   userID,
		Message:  req.Message,
		Snapshot: snapshot,
	})
	if err != nil {
		s.metrics.IncrExternalError("advisor")
		s.logger.Error("advisor call failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("advisor call: %w", err)
	}

	s.metrics.RecordAdvisorTokens(resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	return &domain.AdvisorResult{
		ConversationID: conversationID,
		Answer:         resp.Answer,
		Confidence:     resp.Confidence,
		ProcessedAt:    s.now().UTC(),
	}, nil
}

// buildSnapshot runs the month aggregation so the advisor sees the
// same numbers the dashboard shows.
func (s *AdvisorService) buildSnapshot(ctx context.Context, userID string) (*domain.AdvisorSnapshot, error) {
	w := engine.MonthWindow(s.now(), s.loc)

	var (
		profile  *domain.OnboardingProfile
		expenses []domain.Expense
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetProfile(gCtx, userID)
		if err != nil {
			s.metrics.IncrExternalError("onboarding")
			return fmt.Errorf("profile fetch: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		e, err := s.expenses.ListExpensesBetween(gCtx, userID,
			storeTime(w.StartOfMonth), storeTime(w.EndOfMonth.Add(time.Nanosecond)))
		if err != nil {
			s.metrics.IncrExternalError("expenses")
			return fmt.Errorf("expenses fetch: %w", err)
		}
		expenses = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := engine.Compute(profile, nil, expenses, w)
	if err != nil {
		return nil, err
	}

	return &domain.AdvisorSnapshot{
		MonthlyBudget:       engine.Round2(res.Inputs.MonthlyBudget),
		DiscretionaryBudget: engine.Round2(res.Projection.DiscretionaryBudget),
		TotalSpent:          engine.Round2(res.TotalSpent()),
		AvailableAmount:     engine.Round2(res.Projection.AvailableAmount),
		DailySafeAmount:     engine.Round2(res.Projection.DailySafeAmount),
		SpendingByCategory:  categoryAmounts(res.Aggregation),
		IsPersonalized:      res.Inputs.Personalized,
	}, nil
}
