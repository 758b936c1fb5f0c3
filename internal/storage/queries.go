package storage

import (
	"context"
	"database/sql"

	"budgetbook/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

const listBudgets = `SELECT id, name, limit_amount FROM budgets ORDER BY id`

func (q *Queries) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Budget{}
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.Limit); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const getBudget = `SELECT id, name, limit_amount FROM budgets WHERE id = ?`

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	var b core.Budget
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(getBudget), id).Scan(&b.ID, &b.Name, &b.Limit)
	return b, err
}

const budgetExists = `SELECT EXISTS (SELECT 1 FROM budgets WHERE id = ?)`

func (q *Queries) BudgetExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(budgetExists), id).Scan(&exists)
	return exists, err
}

const createBudget = `INSERT INTO budgets (name, limit_amount) VALUES (?, ?) RETURNING id`

func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(createBudget), b.Name, b.Limit).Scan(&id)
	return id, err
}

const updateBudget = `UPDATE budgets SET name = ?, limit_amount = ? WHERE id = ?`

func (q *Queries) UpdateBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(updateBudget), b.Name, b.Limit, b.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBudget = `DELETE FROM budgets WHERE id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteBudget), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listExpenses = `SELECT id, description, amount, date, budget_id FROM expenses ORDER BY id`

func (q *Queries) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const getExpense = `SELECT id, description, amount, date, budget_id FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, q.dialect.rebind(getExpense), id))
}

const createExpense = `INSERT INTO expenses (description, amount, date, budget_id) VALUES (?, ?, ?, ?) RETURNING id`

func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(createExpense),
		e.Description, e.Amount, timestamp{e.Date}, e.BudgetID).Scan(&id)
	return id, err
}

const updateExpense = `UPDATE expenses SET description = ?, amount = ?, date = ?, budget_id = ? WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(updateExpense),
		e.Description, e.Amount, timestamp{e.Date}, e.BudgetID, e.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteExpense), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpensesByBudget = `DELETE FROM expenses WHERE budget_id = ?`

func (q *Queries) DeleteExpensesByBudget(ctx context.Context, budgetID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteExpensesByBudget), budgetID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e    core.Expense
		date timestamp
	)
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &date, &e.BudgetID); err != nil {
		return core.Expense{}, err
	}
	e.Date = date.Time
	return e, nil
}
