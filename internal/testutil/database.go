// Package testutil provides shared fixtures for tests that need a store.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/storage"
)

// SetupTestDB creates a migrated in-memory store closed when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return store
}

// SampleExpenses returns a small mixed-currency set of valid records.
func SampleExpenses() []model.ExpenseRecord {
	jan15 := model.NewDate(2024, time.January, 15)
	jan20 := model.NewDate(2024, time.January, 20)
	feb03 := model.NewDate(2024, time.February, 3)

	return []model.ExpenseRecord{
		{Date: &jan15, Description: "Devoto Super", Amount: 450, Currency: model.CurrencyUYU, Category: model.CategoryFood},
		{Date: &jan20, Description: "Netflix", Amount: 15.99, Currency: model.CurrencyUSD, Category: model.CategoryEntertainment},
		{Date: &feb03, Description: "UTE", Amount: 2100.5, Currency: model.CurrencyUYU, Category: model.CategoryServices},
	}
}
