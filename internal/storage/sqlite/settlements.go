package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/storage"
)

const settlementColumns = "id, group_id, paid_by, paid_to, amount, currency, note, date, created_by, created_at"

// CreateSettlement persists a new settlement.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = models.SettlementID(uuid.New().String())
	}
	now := time.Now().Unix()
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = now
	}
	if settlement.Date == 0 {
		settlement.Date = now
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		settlement.ID, settlement.GroupID, settlement.PaidBy, settlement.PaidTo,
		settlement.Amount, settlement.Currency, settlement.Note, settlement.Date,
		settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

func scanSettlement(row interface{ Scan(...any) error }) (*models.Settlement, error) {
	st := &models.Settlement{}
	err := row.Scan(&st.ID, &st.GroupID, &st.PaidBy, &st.PaidTo, &st.Amount,
		&st.Currency, &st.Note, &st.Date, &st.CreatedBy, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// GetSettlement retrieves a settlement by id.
func (s *SQLiteStore) GetSettlement(ctx context.Context, id models.SettlementID) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group, newest
// first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID models.GroupID) ([]*models.Settlement, error) {
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY date DESC, created_at DESC",
		groupID)
}

// ListSettlementsByGroups retrieves settlements across many groups.
func (s *SQLiteStore) ListSettlementsByGroups(ctx context.Context, groupIDs []models.GroupID) ([]*models.Settlement, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(groupIDs))
	for i, id := range groupIDs {
		args[i] = id
	}
	return s.querySettlements(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id IN ("+placeholders(len(groupIDs))+
			") ORDER BY date DESC, created_at DESC",
		args...)
}

func (s *SQLiteStore) querySettlements(ctx context.Context, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// DeleteSettlement removes a settlement by id.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, id models.SettlementID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("settlement %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
