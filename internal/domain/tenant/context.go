// Package tenant provides branch-level data isolation primitives.
//
// Every branch-scoped entity carries an optional branch_id. Access checks and
// query scoping must go through this package (AssertAccessible, plus the
// branchscope GORM scopes in the persistence layer) rather than being written
// ad hoc at call sites, so a missing guard is a visible gap instead of a
// silent cross-branch leak.
package tenant

import (
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
)

// Context describes the acting principal's branch scope.
// It is a pure read of session state - no side effects.
type Context struct {
	UserID     uuid.UUID
	BranchID   *uuid.UUID
	SuperAdmin bool
}

// NewContext creates a branch-scoped principal context
func NewContext(userID, branchID uuid.UUID) Context {
	return Context{UserID: userID, BranchID: &branchID}
}

// NewSuperAdminContext creates a context with global visibility
func NewSuperAdminContext(userID uuid.UUID) Context {
	return Context{UserID: userID, SuperAdmin: true}
}

// CurrentBranchID returns the principal's branch, false when none is assigned
func (c Context) CurrentBranchID() (uuid.UUID, bool) {
	if c.BranchID == nil {
		return uuid.Nil, false
	}
	return *c.BranchID, true
}

// IsSuperAdmin returns true for principals with global visibility
func (c Context) IsSuperAdmin() bool {
	return c.SuperAdmin
}

// RequireBranch returns the principal's branch or a NoBranchSelected error.
// A nil branch on a non-super-admin is a configuration error, not absence of scope.
func (c Context) RequireBranch() (uuid.UUID, error) {
	if c.BranchID != nil {
		return *c.BranchID, nil
	}
	if c.SuperAdmin {
		return uuid.Nil, shared.NewNoBranchSelectedError("Super admin must select a branch for this operation")
	}
	return uuid.Nil, shared.NewNoBranchSelectedError("")
}

// ScopedEntity is implemented by any entity carrying an optional branch ID.
// A nil branch ID marks a globally visible entity.
type ScopedEntity interface {
	ScopeBranchID() *uuid.UUID
}

// AssertAccessible fails when the principal may not touch the entity:
// super-admins pass, globally visible entities pass, a principal without a
// branch gets NoBranchSelected, and a branch mismatch gets Forbidden.
// Callers must invoke this on every detail and mutation path.
func AssertAccessible(e ScopedEntity, ctx Context) error {
	if ctx.IsSuperAdmin() {
		return nil
	}
	entityBranch := e.ScopeBranchID()
	if entityBranch == nil {
		return nil
	}
	branchID, ok := ctx.CurrentBranchID()
	if !ok {
		return shared.NewNoBranchSelectedError("")
	}
	if *entityBranch != branchID {
		return shared.ErrForbidden
	}
	return nil
}
