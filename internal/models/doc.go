// Package models defines the core domain models for Evenly.
//
// # Models
//
//   - User: a registered account, identified by a typed UserID
//   - Group: a set of members who share expenses in one nominal currency
//   - Expense: a shared cost advanced by one member and split into
//     per-participant shares
//   - Settlement: a direct payment between two members that pays down debt
//
// # Design Principles
//
//  1. **Typed identifiers**: UserID, GroupID, ExpenseID and SettlementID are
//     distinct string types so a user id can never be passed where a group id
//     is expected, and maps keyed by member keep uniqueness without string
//     coercion at call sites.
//  2. **Minor units**: every monetary field is money.Cents. Decimal amounts
//     exist only at the API boundary.
//  3. **Value semantics**: models are plain structs. The ledger and analytics
//     packages treat them as read-only inputs and never mutate them.
//  4. **Soft deletes**: expenses carry a Deleted flag; groups carry Archived.
//     The store filters both out of every listing the engine sees.
package models
