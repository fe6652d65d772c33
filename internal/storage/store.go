// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/evenlyhq/evenly/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ExpenseFilter narrows group expense listings.
type ExpenseFilter struct {
	// Category restricts to one category tag when non-empty.
	Category string

	// From/To bound the expense date (Unix seconds, inclusive)
	// when non-zero.
	From int64
	To   int64

	// Page and Limit paginate results. Page is 1-based; Limit <= 0
	// means no limit.
	Page  int
	Limit int
}

// Store is the record store the engine reads from and the API writes to.
// The interface allows swapping SQLite for another backend without
// touching the service layer. Reads are individually consistent; there is
// no cross-record transaction guarantee between separate calls, which is
// the accepted eventual-consistency window for balance snapshots.
type Store interface {
	// Users

	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns (nil, nil) when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns (nil, nil) when the user does not exist.
	GetUserByID(ctx context.Context, id models.UserID) (*models.User, error)
	// GetUsersByIDs returns the users that exist, keyed by id; missing
	// ids are simply absent.
	GetUsersByIDs(ctx context.Context, ids []models.UserID) (map[models.UserID]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// SearchUsersByEmail matches emails containing the fragment,
	// excluding the searching user, capped at limit results.
	SearchUsersByEmail(ctx context.Context, fragment string, exclude models.UserID, limit int) ([]*models.User, error)

	// Groups

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id models.GroupID) (*models.Group, error)
	// ListGroupsByMember returns the user's non-archived groups, most
	// recently created first.
	ListGroupsByMember(ctx context.Context, userID models.UserID) ([]*models.Group, error)
	AddGroupMembers(ctx context.Context, groupID models.GroupID, members []models.GroupMember) error
	RemoveGroupMember(ctx context.Context, groupID models.GroupID, userID models.UserID) error
	ArchiveGroup(ctx context.Context, id models.GroupID) error

	// Expenses

	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id models.ExpenseID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	// DeleteExpense soft-deletes; the record stays for audit but leaves
	// every listing.
	DeleteExpense(ctx context.Context, id models.ExpenseID) error
	// ListExpensesByGroup returns non-deleted expenses, newest date
	// first.
	ListExpensesByGroup(ctx context.Context, groupID models.GroupID, filter ExpenseFilter) ([]*models.Expense, error)
	CountExpensesByGroup(ctx context.Context, groupID models.GroupID, filter ExpenseFilter) (int, error)
	// ListExpensesByGroups returns non-deleted expenses across many
	// groups, for the personal dashboard.
	ListExpensesByGroups(ctx context.Context, groupIDs []models.GroupID) ([]*models.Expense, error)

	// Settlements

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, id models.SettlementID) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID models.GroupID) ([]*models.Settlement, error)
	ListSettlementsByGroups(ctx context.Context, groupIDs []models.GroupID) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, id models.SettlementID) error

	// Close releases any resources held by the store.
	Close() error
}
