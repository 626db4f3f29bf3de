// Package lifecycle provides a generic transition-validation engine for
// entities whose status field is governed by a finite, directed transition
// table. Lifecycle entities configure a Machine with their table instead of
// re-implementing transition checks on the status type.
package lifecycle

import (
	"fmt"
	"slices"
	"time"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
)

// Stateful is implemented by entities whose status is governed by a Machine
type Stateful[S ~string] interface {
	CurrentState() S
	SetState(S)
}

// Machine validates transitions against a directed transition table.
// A state with no outbound transitions is terminal. Self-transitions are
// illegal unless explicitly listed in the table.
type Machine[S ~string] struct {
	transitions map[S][]S
}

// NewMachine creates a machine from a transition table. States that appear
// only as targets are terminal.
func NewMachine[S ~string](transitions map[S][]S) *Machine[S] {
	table := make(map[S][]S, len(transitions))
	for from, targets := range transitions {
		table[from] = slices.Clone(targets)
	}
	return &Machine[S]{transitions: table}
}

// AllowedTransitions returns the legal targets from a state, empty for terminal states
func (m *Machine[S]) AllowedTransitions(state S) []S {
	return slices.Clone(m.transitions[state])
}

// CanTransitionTo checks whether from may move to to
func (m *Machine[S]) CanTransitionTo(from, to S) bool {
	return slices.Contains(m.transitions[from], to)
}

// IsFinal returns true iff the state has no outbound transitions
func (m *Machine[S]) IsFinal(state S) bool {
	return len(m.transitions[state]) == 0
}

// ValidateReachability verifies that every non-terminal state is reachable
// from the initial state. A violation is a machine misconfiguration, reported
// as a defect rather than a business error.
func (m *Machine[S]) ValidateReachability(initial S) error {
	reached := map[S]bool{initial: true}
	frontier := []S{initial}
	for len(frontier) > 0 {
		state := frontier[0]
		frontier = frontier[1:]
		for _, next := range m.transitions[state] {
			if !reached[next] {
				reached[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	for state := range m.transitions {
		if !m.IsFinal(state) && !reached[state] {
			return shared.NewConfigError(
				"UNREACHABLE_STATE",
				fmt.Sprintf("State %s is not reachable from %s", state, initial),
			)
		}
	}
	return nil
}

// TransitionRecord is an immutable log entry appended for every successful
// transition. It is persisted together with the state write in one transaction.
type TransitionRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_transition_entity,priority:1"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_transition_entity,priority:2"`
	FromState  string    `gorm:"type:varchar(30);not null"`
	ToState    string    `gorm:"type:varchar(30);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid"`
	OccurredAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (TransitionRecord) TableName() string {
	return "transition_records"
}

// Transition validates the move, mutates the entity state and returns the log
// record. Validation happens before any mutation, so an illegal transition
// leaves the entity untouched. Persisting state and record atomically is the
// repository's responsibility.
func (m *Machine[S]) Transition(entity Stateful[S], entityType string, entityID uuid.UUID, to S, actor uuid.UUID) (*TransitionRecord, error) {
	from := entity.CurrentState()
	if !m.CanTransitionTo(from, to) {
		return nil, shared.NewInvalidTransitionError(string(from), string(to))
	}
	entity.SetState(to)
	return &TransitionRecord{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		FromState:  string(from),
		ToState:    string(to),
		ActorID:    actor,
		OccurredAt: time.Now(),
	}, nil
}
