package tenant

import (
	"time"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Branch is the unit of data isolation. Branch identity is immutable once created.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Address   string    `gorm:"type:varchar(255)"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a new branch
func NewBranch(code, name string) (*Branch, error) {
	if code == "" {
		return nil, shared.NewBusinessError("INVALID_BRANCH_CODE", "Branch code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewBusinessError("INVALID_BRANCH_CODE", "Branch code cannot exceed 20 characters")
	}
	if name == "" {
		return nil, shared.NewBusinessError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}

	now := time.Now()
	return &Branch{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Deactivate marks the branch inactive without removing its data
func (b *Branch) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
}

// Activate re-enables the branch
func (b *Branch) Activate() {
	b.IsActive = true
	b.UpdatedAt = time.Now()
}

// Rename updates the branch display name
func (b *Branch) Rename(name string) error {
	if name == "" {
		return shared.NewBusinessError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}
	b.Name = name
	b.UpdatedAt = time.Now()
	return nil
}
