package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/storage"
)

const expenseColumns = "id, group_id, title, amount, currency, paid_by, split_type, category, notes, date, created_by, deleted, created_at"

// CreateExpense persists a new expense and its participant shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = models.ExpenseID(uuid.New().String())
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.Date == 0 {
		expense.Date = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)",
		expense.ID, expense.GroupID, expense.Title, expense.Amount, expense.Currency,
		expense.PaidBy, expense.SplitType, expense.Category, expense.Notes,
		expense.Date, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertParticipants stores the participant list preserving submission
// order; the position column keeps equal-split remainder assignment
// stable on reload.
func insertParticipants(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, p := range expense.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, share, position) VALUES (?, ?, ?, ?)",
			expense.ID, p.UserID, p.Share, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) expenseParticipants(ctx context.Context, ids []models.ExpenseID) (map[models.ExpenseID][]models.Participant, error) {
	result := make(map[models.ExpenseID][]models.Participant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, share FROM expense_participants
		 WHERE expense_id IN (`+placeholders(len(ids))+`) ORDER BY expense_id, position`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID models.ExpenseID
		var p models.Participant
		if err := rows.Scan(&expenseID, &p.UserID, &p.Share); err != nil {
			return nil, fmt.Errorf("failed to scan expense participant: %w", err)
		}
		result[expenseID] = append(result[expenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense participants: %w", err)
	}
	return result, nil
}

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	e := &models.Expense{}
	var deleted int
	err := row.Scan(&e.ID, &e.GroupID, &e.Title, &e.Amount, &e.Currency, &e.PaidBy,
		&e.SplitType, &e.Category, &e.Notes, &e.Date, &e.CreatedBy, &deleted, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Deleted = deleted != 0
	return e, nil
}

// GetExpense retrieves an expense by id, including participants.
// Soft-deleted expenses are reported as not found.
func (s *SQLiteStore) GetExpense(ctx context.Context, id models.ExpenseID) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND deleted = 0", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	parts, err := s.expenseParticipants(ctx, []models.ExpenseID{id})
	if err != nil {
		return nil, err
	}
	expense.Participants = parts[id]
	return expense, nil
}

// UpdateExpense replaces an expense's fields and participant list.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET title = ?, amount = ?, currency = ?, paid_by = ?, split_type = ?,
		 category = ?, notes = ?, date = ? WHERE id = ? AND deleted = 0`,
		expense.Title, expense.Amount, expense.Currency, expense.PaidBy, expense.SplitType,
		expense.Category, expense.Notes, expense.Date, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM expense_participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense soft-deletes an expense.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id models.ExpenseID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET deleted = 1 WHERE id = ? AND deleted = 0", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func expenseFilterClauses(filter storage.ExpenseFilter) (string, []any) {
	var sb strings.Builder
	var args []any
	if filter.Category != "" {
		sb.WriteString(" AND category = ?")
		args = append(args, filter.Category)
	}
	if filter.From != 0 {
		sb.WriteString(" AND date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != 0 {
		sb.WriteString(" AND date <= ?")
		args = append(args, filter.To)
	}
	return sb.String(), args
}

// ListExpensesByGroup returns non-deleted group expenses, newest first,
// honoring the filter's category/date bounds and pagination.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID models.GroupID, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	where, args := expenseFilterClauses(filter)
	query := "SELECT " + expenseColumns + " FROM expenses WHERE group_id = ? AND deleted = 0" + where +
		" ORDER BY date DESC, created_at DESC"
	args = append([]any{groupID}, args...)

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	return s.queryExpenses(ctx, query, args...)
}

// CountExpensesByGroup counts the expenses ListExpensesByGroup would
// return without pagination.
func (s *SQLiteStore) CountExpensesByGroup(ctx context.Context, groupID models.GroupID, filter storage.ExpenseFilter) (int, error) {
	where, args := expenseFilterClauses(filter)
	args = append([]any{groupID}, args...)

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE group_id = ? AND deleted = 0"+where,
		args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// ListExpensesByGroups returns non-deleted expenses across many groups,
// newest first.
func (s *SQLiteStore) ListExpensesByGroups(ctx context.Context, groupIDs []models.GroupID) ([]*models.Expense, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(groupIDs))
	for i, id := range groupIDs {
		args[i] = id
	}
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id IN ("+placeholders(len(groupIDs))+
			") AND deleted = 0 ORDER BY date DESC, created_at DESC",
		args...)
}

func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	var ids []models.ExpenseID
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	parts, err := s.expenseParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Participants = parts[e.ID]
	}
	return expenses, nil
}
