package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/storage"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Browse stored expenses",
	}

	cmd.AddCommand(expensesListCmd())
	cmd.AddCommand(expensesSummaryCmd())
	cmd.AddCommand(expensesShowCmd())
	cmd.AddCommand(expensesImportsCmd())
	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "first date to include (DD/MM/YY)")
	cmd.Flags().String("to", "", "last date to include (DD/MM/YY)")
	cmd.Flags().String("month", "", "calendar month to include (YYYY-MM or \"current\"), overrides --from/--to")
	cmd.Flags().StringP("category", "c", "", "only this category")
	cmd.Flags().String("currency", "", "only this currency (UYU, USD)")
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
}

// filterFromFlags reads the shared filter flags.
func filterFromFlags(cmd *cobra.Command) (storage.ExpenseFilter, error) {
	var filter storage.ExpenseFilter

	for flag, dst := range map[string]**model.Date{"from": &filter.From, "to": &filter.To} {
		value, _ := cmd.Flags().GetString(flag)
		if value == "" {
			continue
		}
		d, err := model.ParseDate(value)
		if err != nil {
			return filter, common.NewUserError(fmt.Sprintf("invalid --%s date %q", flag, value), err)
		}
		*dst = &d
	}

	if value, _ := cmd.Flags().GetString("month"); value != "" {
		from, to, err := monthRange(value, time.Now())
		if err != nil {
			return filter, common.NewUserError(fmt.Sprintf("invalid --month %q", value), err)
		}
		filter.From, filter.To = &from, &to
	}

	if value, _ := cmd.Flags().GetString("category"); value != "" {
		category, ok := model.ParseCategory(value)
		if !ok {
			return filter, common.NewUserError(fmt.Sprintf("unknown category %q", value), common.ErrInvalidConfig)
		}
		filter.Category = category
	}

	if value, _ := cmd.Flags().GetString("currency"); value != "" {
		currency := model.Currency(strings.ToUpper(value))
		if !currency.IsValid() {
			return filter, common.NewUserError(fmt.Sprintf("unknown currency %q", value), common.ErrInvalidConfig)
		}
		filter.Currency = currency
	}

	return filter, nil
}

// monthRange returns the first and last day of the month named by value,
// relative to ref when value is "current".
func monthRange(value string, ref time.Time) (model.Date, model.Date, error) {
	month := ref
	if !strings.EqualFold(value, "current") {
		parsed, err := time.Parse("2006-01", value)
		if err != nil {
			return model.Date{}, model.Date{}, err
		}
		month = parsed
	}

	m := now.With(month)
	first, last := m.BeginningOfMonth(), m.EndOfMonth()
	return model.NewDate(first.Year(), first.Month(), first.Day()),
		model.NewDate(last.Year(), last.Month(), last.Day()), nil
}

func expensesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			filter, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			expenses, err := store.ListExpenses(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return encodeJSON(cmd, expenses)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderStoredExpenses(expenses))
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().IntP("limit", "n", 0, "maximum number of expenses (0 for all)")
	return cmd
}

func expensesSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals per category and currency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			filter, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}

			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			totals, err := store.TotalsByCategory(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to compute totals: %w", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return encodeJSON(cmd, totals)
			}

			count, err := store.CountExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to count expenses: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategoryTotals(totals))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%d expenses stored", count)))
			return nil
		},
	}

	addFilterFlags(cmd)
	return cmd
}

func expensesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored expense as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			expense, err := store.GetExpense(ctx, args[0])
			if err != nil {
				return err
			}
			return encodeJSON(cmd, expense)
		},
	}
}

func expensesImportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Show the most recent imports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			imports, err := store.ListImports(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list imports: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(imports) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No imports yet"))
				return nil
			}
			for _, rec := range imports {
				line := fmt.Sprintf("%s  %-30s %3d found %3d new  %s",
					rec.ImportedAt.Local().Format("2006-01-02 15:04"), rec.Source, rec.Found, rec.Inserted, rec.Strategy)
				if rec.Success {
					fmt.Fprintln(out, cli.FormatSuccess(line))
				} else {
					fmt.Fprintln(out, cli.FormatError(line+"  "+rec.Error))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "number of imports to show")
	return cmd
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
