// Package rental contains the rental contract aggregate, the canonical
// lifecycle entity of the system. Its status is governed by the generic
// lifecycle machine rather than checks scattered over the status type.
package rental

import (
	"time"

	"github.com/erp/branchcore/internal/domain/lifecycle"
	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the status of a rental contract
type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "DRAFT"
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusSuspended  ContractStatus = "SUSPENDED"
	ContractStatusExpired    ContractStatus = "EXPIRED"
	ContractStatusTerminated ContractStatus = "TERMINATED"
)

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusSuspended,
		ContractStatusExpired, ContractStatusTerminated:
		return true
	}
	return false
}

// contractMachine is the transition table for rental contracts. A contract
// must pass through ACTIVE before it can expire; EXPIRED and TERMINATED are
// terminal.
var contractMachine = lifecycle.NewMachine(map[ContractStatus][]ContractStatus{
	ContractStatusDraft:     {ContractStatusActive, ContractStatusTerminated},
	ContractStatusActive:    {ContractStatusSuspended, ContractStatusExpired, ContractStatusTerminated},
	ContractStatusSuspended: {ContractStatusActive, ContractStatusExpired, ContractStatusTerminated},
})

// Machine exposes the contract transition table for read-only queries
func Machine() *lifecycle.Machine[ContractStatus] {
	return contractMachine
}

// EntityType identifies rental contracts in the transition log
const EntityType = "rental_contract"

// RentalContract is a long-lived agreement to rent equipment to a customer
type RentalContract struct {
	shared.BranchAggregateRoot
	ContractNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName   string          `gorm:"type:varchar(100);not null"`
	MonthlyRate    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status         ContractStatus  `gorm:"type:varchar(20);not null;index"`
	StartDate      *time.Time      `gorm:"type:timestamptz"`
	EndDate        *time.Time      `gorm:"type:timestamptz"`
	SuspendedAt    *time.Time      `gorm:"type:timestamptz"`
	TerminatedAt   *time.Time      `gorm:"type:timestamptz"`
	TerminateNote  string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (RentalContract) TableName() string {
	return "rental_contracts"
}

// CurrentState implements lifecycle.Stateful
func (c *RentalContract) CurrentState() ContractStatus {
	return c.Status
}

// SetState implements lifecycle.Stateful
func (c *RentalContract) SetState(s ContractStatus) {
	c.Status = s
}

// NewRentalContract creates a contract in DRAFT status
func NewRentalContract(branchID uuid.UUID, contractNumber string, customerID uuid.UUID, customerName string, monthlyRate decimal.Decimal) (*RentalContract, error) {
	if contractNumber == "" {
		return nil, shared.NewBusinessError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if len(contractNumber) > 50 {
		return nil, shared.NewBusinessError("INVALID_CONTRACT_NUMBER", "Contract number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewBusinessError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewBusinessError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if monthlyRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewBusinessError("INVALID_RATE", "Monthly rate must be positive")
	}

	return &RentalContract{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		ContractNumber:      contractNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		MonthlyRate:         monthlyRate,
		Status:              ContractStatusDraft,
	}, nil
}

// Activate starts the contract. Legal from DRAFT and from SUSPENDED (resume).
func (c *RentalContract) Activate(actor uuid.UUID) (*lifecycle.TransitionRecord, error) {
	wasSuspended := c.Status == ContractStatusSuspended
	record, err := contractMachine.Transition(c, EntityType, c.ID, ContractStatusActive, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if wasSuspended {
		c.SuspendedAt = nil
	} else {
		c.StartDate = &now
	}
	c.UpdatedAt = now
	c.IncrementVersion()
	return record, nil
}

// Suspend pauses an active contract
func (c *RentalContract) Suspend(actor uuid.UUID) (*lifecycle.TransitionRecord, error) {
	record, err := contractMachine.Transition(c, EntityType, c.ID, ContractStatusSuspended, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	c.SuspendedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()
	return record, nil
}

// Expire ends the contract at its natural term. A contract must have been
// active at some point: DRAFT contracts cannot expire.
func (c *RentalContract) Expire(actor uuid.UUID) (*lifecycle.TransitionRecord, error) {
	record, err := contractMachine.Transition(c, EntityType, c.ID, ContractStatusExpired, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	c.EndDate = &now
	c.UpdatedAt = now
	c.IncrementVersion()
	return record, nil
}

// Terminate ends the contract early with a reason
func (c *RentalContract) Terminate(actor uuid.UUID, note string) (*lifecycle.TransitionRecord, error) {
	record, err := contractMachine.Transition(c, EntityType, c.ID, ContractStatusTerminated, actor)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	c.TerminatedAt = &now
	c.TerminateNote = note
	c.UpdatedAt = now
	c.IncrementVersion()
	return record, nil
}

// TransitionTo moves the contract to an arbitrary target status. Write paths
// that receive the target from a request use this instead of the named methods.
func (c *RentalContract) TransitionTo(target ContractStatus, actor uuid.UUID, note string) (*lifecycle.TransitionRecord, error) {
	switch target {
	case ContractStatusActive:
		return c.Activate(actor)
	case ContractStatusSuspended:
		return c.Suspend(actor)
	case ContractStatusExpired:
		return c.Expire(actor)
	case ContractStatusTerminated:
		return c.Terminate(actor, note)
	default:
		return nil, shared.NewBusinessError("INVALID_STATUS", "Unknown contract status: "+string(target))
	}
}

// IsFinal returns true when the contract can no longer change status
func (c *RentalContract) IsFinal() bool {
	return contractMachine.IsFinal(c.Status)
}
