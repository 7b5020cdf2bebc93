// Package storage provides the SQLite persistence layer for extracted expenses.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidExpense   = errors.New("invalid expense")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpenses checks every record before anything is written.
func validateExpenses(records []model.ExpenseRecord) error {
	for i := range records {
		if err := validateExpense(&records[i]); err != nil {
			return fmt.Errorf("expense at index %d: %w", i, err)
		}
	}
	return nil
}

func validateExpense(e *model.ExpenseRecord) error {
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidExpense)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %.2f", ErrInvalidExpense, e.Amount)
	}
	if !e.Currency.IsValid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidExpense, e.Currency)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidExpense, e.Category)
	}
	return nil
}

// validateFilter checks that a date range is ordered.
func validateFilter(f ExpenseFilter) error {
	if f.From != nil && f.To != nil && f.To.Before(f.From.Time) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, f.From, f.To)
	}
	return nil
}
