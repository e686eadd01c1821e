package domain

import "time"

// Expense categories. Must match the PostgreSQL enum on the expenses table.
const (
	CategoryMeals     = "meals"
	CategoryTravel    = "travel"
	CategoryOffice    = "office"
	CategorySoftware  = "software"
	CategoryMarketing = "marketing"
	CategoryUtilities = "utilities"
	CategoryEquipment = "equipment"
	CategoryServices  = "services"
	CategoryOther     = "other"
)

// Expense statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusReimbursed = "reimbursed"
)

// ValidCategories lists every accepted expense category.
var ValidCategories = []string{
	CategoryMeals, CategoryTravel, CategoryOffice, CategorySoftware,
	CategoryMarketing, CategoryUtilities, CategoryEquipment,
	CategoryServices, CategoryOther,
}

// ValidStatuses lists every accepted expense status.
var ValidStatuses = []string{
	StatusPending, StatusProcessing, StatusApproved,
	StatusRejected, StatusReimbursed,
}

// Expense is a single spending record. Immutable once aggregated: the
// engine only ever reads these, the CRUD surface owns mutation.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Vendor      string    `json:"vendor"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// ExpenseFilter narrows an expense listing.
type ExpenseFilter struct {
	Category  string
	Status    string
	StartDate time.Time
	EndDate   time.Time
	MinAmount float64
	MaxAmount float64
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// CreateExpenseRequest is the POST /v1/expenses payload.
type CreateExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
	Status      string  `json:"status,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"` // RFC3339; backdating allowed
}

// UpdateExpenseRequest is the PATCH /v1/expenses/{id} payload.
// Pointer fields distinguish "leave unchanged" from "set to zero".
type UpdateExpenseRequest struct {
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Vendor      *string  `json:"vendor,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// IsValidCategory reports whether c is a known expense category.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is a known expense status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
