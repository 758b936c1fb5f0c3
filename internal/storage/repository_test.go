package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgetbook/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestBudgetCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.CreateBudget(ctx, core.Budget{Name: "Groceries", Limit: core.MustParseMoney("500.00")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}

	got, err := repo.GetBudget(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Groceries" || got.Limit.String() != "500.00" {
		t.Fatalf("unexpected budget %+v", got)
	}

	got.Limit = core.MustParseMoney("600")
	if err := repo.UpdateBudget(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetBudget(ctx, created.ID)
	if got.Limit.String() != "600.00" {
		t.Fatalf("update not applied: %s", got.Limit)
	}

	list, err := repo.ListBudgets(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}

	if err := repo.DeleteBudget(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetBudget(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestMissingRowsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	checks := map[string]error{
		"get budget":     func() error { _, err := repo.GetBudget(ctx, 42); return err }(),
		"update budget":  repo.UpdateBudget(ctx, core.Budget{ID: 42, Name: "x"}),
		"delete budget":  repo.DeleteBudget(ctx, 42),
		"get expense":    func() error { _, err := repo.GetExpense(ctx, 42); return err }(),
		"update expense": repo.UpdateExpense(ctx, core.Expense{ID: 42, Description: "x", Date: time.Now(), BudgetID: 1}),
		"delete expense": repo.DeleteExpense(ctx, 42),
	}
	for name, err := range checks {
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}

	exists, err := repo.BudgetExists(ctx, 42)
	if err != nil || exists {
		t.Fatalf("BudgetExists(42) = %v, %v", exists, err)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	b, err := repo.CreateBudget(ctx, core.Budget{Name: "Food", Limit: core.MustParseMoney("100")})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	date := time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)
	e, err := repo.CreateExpense(ctx, core.Expense{Description: "Bread", Amount: core.MustParseMoney("3.5"), Date: date, BudgetID: b.ID})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	got, err := repo.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if got.Description != "Bread" || got.Amount.String() != "3.50" || got.BudgetID != b.ID {
		t.Fatalf("unexpected expense %+v", got)
	}
	if !got.Date.Equal(date) {
		t.Fatalf("date = %v, want %v", got.Date, date)
	}
}

func TestDeleteBudgetCascadesToExpenses(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	keep, _ := repo.CreateBudget(ctx, core.Budget{Name: "Keep"})
	drop, _ := repo.CreateBudget(ctx, core.Budget{Name: "Drop"})
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateExpense(ctx, core.Expense{Description: "d", Date: time.Now(), BudgetID: drop.ID}); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{Description: "k", Date: time.Now(), BudgetID: keep.ID}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := repo.DeleteBudget(ctx, drop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	items, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].BudgetID != keep.ID {
		t.Fatalf("expected only the kept expense, got %+v", items)
	}
}

func TestForeignKeyEnforced(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateExpense(context.Background(), core.Expense{Description: "orphan", Date: time.Now(), BudgetID: 999})
	if err == nil {
		t.Fatal("expected foreign key violation for missing budget")
	}
}

func TestRebind(t *testing.T) {
	q := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	if got := DialectSQLite.rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %s", got)
	}
	if got := DialectPostgres.rebind(q); got != "UPDATE t SET a = $1, b = $2 WHERE id = $3" {
		t.Fatalf("postgres rebind = %s", got)
	}
}

func TestTimestampScan(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, src := range []any{
		want,
		"2024-01-02 03:04:05+00:00",
		"2024-01-02T03:04:05Z",
		[]byte("2024-01-02 03:04:05"),
	} {
		var ts timestamp
		if err := ts.Scan(src); err != nil {
			t.Fatalf("scan %v: %v", src, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("scan %v = %v", src, ts.Time)
		}
	}
	var ts timestamp
	if err := ts.Scan("yesterday"); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}
