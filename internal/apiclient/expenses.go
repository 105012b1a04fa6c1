package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// SplitMethod is how an expense is divided among participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitExact      SplitMethod = "exact"
	SplitShares     SplitMethod = "shares"
)

// ExpenseShare is one participant's part of an expense.
type ExpenseShare struct {
	UserID      int64    `json:"user_id" validate:"required"`
	Percentage  *float64 `json:"percentage,omitempty"`
	SharesCount *int     `json:"shares_count,omitempty"`
	OwedAmount  *float64 `json:"owed_amount,omitempty"`
}

// Expense is a payment made by one participant on behalf of others.
type Expense struct {
	ID          int64          `json:"id,omitempty"`
	Trip        domain.TripID  `json:"trip,omitempty"`
	Description string         `json:"description" validate:"required"`
	Amount      float64        `json:"amount" validate:"gt=0"`
	Currency    string         `json:"currency,omitempty"`
	PaidByID    int64          `json:"paid_by_id" validate:"required"`
	SplitMethod SplitMethod    `json:"split_method" validate:"oneof=equal percentage exact shares"`
	Shares      []ExpenseShare `json:"shares" validate:"dive"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

// Balance is a participant's net position on a trip.
type Balance struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username,omitempty"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency,omitempty"`
}

// Settlement records a payment from payer to payee clearing a debt.
type Settlement struct {
	ID        int64         `json:"id,omitempty"`
	Trip      domain.TripID `json:"trip,omitempty"`
	PayerID   int64         `json:"payer_id" validate:"required"`
	PayeeID   int64         `json:"payee_id" validate:"required,nefield=PayerID"`
	Amount    float64       `json:"amount" validate:"gt=0"`
	Currency  string        `json:"currency,omitempty"`
	Note      string        `json:"note,omitempty"`
	CreatedAt *time.Time    `json:"created_at,omitempty"`
}

// ExpensesAPI wraps a trip's expenses, balances and settlements.
type ExpensesAPI struct{ c *Client }

// Expenses returns the expenses resource wrapper.
func (c *Client) Expenses() *ExpensesAPI { return &ExpensesAPI{c: c} }

func expensesPath(tripID domain.TripID) string {
	return fmt.Sprintf("/api/trip/%d/expenses/", tripID)
}

// List returns the trip's expenses.
func (a *ExpensesAPI) List(ctx context.Context, tripID domain.TripID) ([]Expense, error) {
	var out []Expense
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: expensesPath(tripID)}, &out)
	return out, err
}

// Create records a new expense.
func (a *ExpensesAPI) Create(ctx context.Context, tripID domain.TripID, e Expense) (Expense, error) {
	if err := validateInput(e); err != nil {
		return Expense{}, err
	}
	var out Expense
	err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: expensesPath(tripID), Body: e}, &out)
	return out, err
}

// Update sends a partial update; only non-nil keys in fields are changed.
func (a *ExpensesAPI) Update(ctx context.Context, tripID domain.TripID, expenseID int64, fields map[string]any) (Expense, error) {
	var out Expense
	err := a.c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("%s%d/", expensesPath(tripID), expenseID),
		Body:   fields,
	}, &out)
	return out, err
}

// Delete removes an expense.
func (a *ExpensesAPI) Delete(ctx context.Context, tripID domain.TripID, expenseID int64) error {
	return a.c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("%s%d/", expensesPath(tripID), expenseID),
	}, nil)
}

// Balances returns each participant's net balance.
func (a *ExpensesAPI) Balances(ctx context.Context, tripID domain.TripID) ([]Balance, error) {
	var out []Balance
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/api/trip/%d/balances/", tripID)}, &out)
	return out, err
}

// Settlements returns recorded settlements.
func (a *ExpensesAPI) Settlements(ctx context.Context, tripID domain.TripID) ([]Settlement, error) {
	var out []Settlement
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/api/trip/%d/settlements/", tripID)}, &out)
	return out, err
}

// CreateSettlement records a payment. Payer and payee must be different
// people; this is checked before the request is sent.
func (a *ExpensesAPI) CreateSettlement(ctx context.Context, tripID domain.TripID, s Settlement) (Settlement, error) {
	if err := validateInput(s); err != nil {
		return Settlement{}, err
	}
	var out Settlement
	err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/trip/%d/settlements/", tripID),
		Body:   s,
	}, &out)
	return out, err
}
