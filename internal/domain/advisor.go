package domain

import "time"

// ============================================================
// Advisor (external AI agent) types
// ============================================================

// AdvisorRequest is the payload sent to the external advisor agent.
// The snapshot gives the agent the same numbers the dashboard shows,
// so its answers stay consistent with the UI.
type AdvisorRequest struct {
	UserID   string           `json:"user_id"`
	Message  string           `json:"message"`
	Snapshot *AdvisorSnapshot `json:"snapshot,omitempty"`
}

// AdvisorSnapshot is a compact view of the user's current budget state.
type AdvisorSnapshot struct {
	MonthlyBudget       float64            `json:"monthly_budget"`
	DiscretionaryBudget float64            `json:"discretionary_budget"`
	TotalSpent          float64            `json:"total_spent"`
	AvailableAmount     float64            `json:"available_amount"`
	DailySafeAmount     float64            `json:"daily_safe_amount"`
	SpendingByCategory  map[string]float64 `json:"spending_by_category"`
	IsPersonalized      bool               `json:"is_personalized"`
}

// AdvisorResponse is what the advisor agent returns.
type AdvisorResponse struct {
	Answer     string     `json:"answer"`
	Confidence float64    `json:"confidence"`
	TokensUsed TokenUsage `json:"tokens_used"`
}

// TokenUsage reports LLM token consumption for metrics.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AskAdvisorRequest is the POST /v1/advisor/ask payload.
type AskAdvisorRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// AdvisorResult is the outward-facing advisor reply.
type AdvisorResult struct {
	ConversationID string    `json:"conversationId"`
	Answer         string    `json:"answer"`
	Confidence     float64   `json:"confidence"`
	ProcessedAt    time.Time `json:"processedAt"`
}
