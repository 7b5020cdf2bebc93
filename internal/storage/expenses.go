package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
)

const isoDate = "2006-01-02"

var expenseColumns = []string{"id", "hash", "date", "description", "amount", "currency", "category", "source", "created_at"}

// StoredExpense is an ExpenseRecord as persisted.
type StoredExpense struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Hash      string    `json:"-"`
	Source    string    `json:"source"`
	model.ExpenseRecord
}

// ExpenseFilter narrows ListExpenses and TotalsByCategory. Zero fields do
// not filter. Undated expenses are excluded when a date bound is set.
type ExpenseFilter struct {
	From     *model.Date
	To       *model.Date
	Category model.Category
	Currency model.Currency
	Limit    int
}

// CategoryTotal is the sum of one category in one currency.
type CategoryTotal struct {
	Category model.Category `json:"category"`
	Currency model.Currency `json:"currency"`
	Total    float64        `json:"total"`
	Count    int            `json:"count"`
}

// SaveExpenses inserts records in a single transaction and returns how many
// were new. Records whose hash is already stored are skipped.
func (s *SQLiteStorage) SaveExpenses(ctx context.Context, source string, records []model.ExpenseRecord) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	if err := validateExpenses(records); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO expenses (id, hash, date, description, amount, currency, category, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, record := range records {
		var res sql.Result
		res, err = stmt.ExecContext(ctx,
			uuid.NewString(),
			record.Hash(),
			nullableDate(record.Date),
			strings.TrimSpace(record.Description),
			record.Amount,
			string(record.Currency),
			string(record.Category),
			source,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert expense %q: %w", record.Description, err)
		}
		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit expenses: %w", err)
	}
	return inserted, nil
}

// GetExpense returns one stored expense by id.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id string) (*StoredExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query, args, err := sq.Select(expenseColumns...).From("expenses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build expense query: %w", err)
	}

	expense, err := scanExpense(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses returns stored expenses ordered by date, undated last.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]StoredExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	builder := filter.apply(sq.Select(expenseColumns...).From("expenses")).
		OrderBy("date IS NULL", "date", "created_at", "id")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build expense query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []StoredExpense
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// TotalsByCategory sums stored expenses per category and currency, largest
// first.
func (s *SQLiteStorage) TotalsByCategory(ctx context.Context, filter ExpenseFilter) ([]CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	query, args, err := filter.apply(sq.Select("category", "currency", "SUM(amount)", "COUNT(*)").From("expenses")).
		GroupBy("category", "currency").
		OrderBy("currency", "SUM(amount) DESC", "category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build totals query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []CategoryTotal
	for rows.Next() {
		var (
			t                  CategoryTotal
			category, currency string
		)
		if err := rows.Scan(&category, &currency, &t.Total, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan total: %w", err)
		}
		t.Category = model.Category(category)
		t.Currency = model.Currency(currency)
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate totals: %w", err)
	}
	return totals, nil
}

// CountExpenses returns the number of stored expenses.
func (s *SQLiteStorage) CountExpenses(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// apply adds the filter's conditions to a query.
func (f ExpenseFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"date": f.From.Format(isoDate)})
	}
	if f.To != nil {
		b = b.Where(sq.LtOrEq{"date": f.To.Format(isoDate)})
	}
	if f.Category != "" {
		b = b.Where(sq.Eq{"category": string(f.Category)})
	}
	if f.Currency != "" {
		b = b.Where(sq.Eq{"currency": string(f.Currency)})
	}
	return b
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*StoredExpense, error) {
	var (
		e                  StoredExpense
		date               sql.NullString
		currency, category string
	)
	if err := row.Scan(&e.ID, &e.Hash, &date, &e.Description, &e.Amount, &currency, &category, &e.Source, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	e.Currency = model.Currency(currency)
	e.Category = model.Category(category)
	if date.Valid {
		e.Date = model.ParseDatePtr(date.String)
	}
	return &e, nil
}

func nullableDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.Format(isoDate)
}
