// Package service defines the contracts between the commands and the
// persistence layer.
package service

import (
	"context"

	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/storage"
)

// ExpenseWriter stores extracted expenses and logs every processed document.
type ExpenseWriter interface {
	SaveExpenses(ctx context.Context, source string, records []model.ExpenseRecord) (int, error)
	RecordImport(ctx context.Context, rec storage.ImportRecord) (string, error)
}

// ExpenseReader queries stored expenses.
type ExpenseReader interface {
	GetExpense(ctx context.Context, id string) (*storage.StoredExpense, error)
	ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]storage.StoredExpense, error)
	TotalsByCategory(ctx context.Context, filter storage.ExpenseFilter) ([]storage.CategoryTotal, error)
	CountExpenses(ctx context.Context) (int, error)
	ListImports(ctx context.Context, limit int) ([]storage.ImportRecord, error)
}

// ExpenseStore is the full persistence contract.
type ExpenseStore interface {
	ExpenseWriter
	ExpenseReader
	Migrate(ctx context.Context) error
	Close() error
}

var _ ExpenseStore = (*storage.SQLiteStorage)(nil)
