// Package branchscope provides branch-level database scoping for GORM.
//
// Every list, detail and mutation path must apply one of these scopes (or the
// registered callback) instead of filtering ad hoc, so a missing guard is a
// visible gap rather than a silent cross-branch leak. Globally visible rows
// (branch_id IS NULL) are included in scoped queries.
//
// Usage:
//
//	db.Scopes(branchscope.Scope(tctx)).Find(&contracts)
package branchscope

import (
	"errors"

	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrBranchRequired is returned when a branch ID is required but not found
var ErrBranchRequired = errors.New("branch_id is required but not found in context")

// ErrInvalidBranchID is returned when the branch ID format is invalid
var ErrInvalidBranchID = errors.New("invalid branch_id format")

// Scope applies branch filtering for the given principal context.
// Super-admins see everything; scoped principals see their branch plus
// globally visible rows; principals without a branch see only global rows.
func Scope(tctx tenant.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tctx.IsSuperAdmin() {
			return db
		}
		if branchID, ok := tctx.CurrentBranchID(); ok {
			return db.Where("branch_id = ? OR branch_id IS NULL", branchID)
		}
		return db.Where("branch_id IS NULL")
	}
}

// BranchScope filters to a single branch regardless of principal.
// Used by write paths that have already resolved the branch via RequireBranch.
func BranchScope(branchID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("branch_id = ?", branchID)
	}
}
