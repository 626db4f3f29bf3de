package lifecycle

import (
	"errors"
	"testing"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState string

const (
	stateDraft  testState = "DRAFT"
	stateOpen   testState = "OPEN"
	stateClosed testState = "CLOSED"
)

type testEntity struct {
	state testState
}

func (e *testEntity) CurrentState() testState { return e.state }
func (e *testEntity) SetState(s testState)    { e.state = s }

func newTestMachine() *Machine[testState] {
	return NewMachine(map[testState][]testState{
		stateDraft: {stateOpen, stateClosed},
		stateOpen:  {stateClosed},
	})
}

func TestMachineQueries(t *testing.T) {
	m := newTestMachine()

	t.Run("allowed transitions", func(t *testing.T) {
		assert.ElementsMatch(t, []testState{stateOpen, stateClosed}, m.AllowedTransitions(stateDraft))
		assert.Empty(t, m.AllowedTransitions(stateClosed))
	})

	t.Run("can transition to", func(t *testing.T) {
		assert.True(t, m.CanTransitionTo(stateDraft, stateOpen))
		assert.False(t, m.CanTransitionTo(stateClosed, stateDraft))
		assert.False(t, m.CanTransitionTo(stateDraft, stateDraft), "self-transitions are illegal unless listed")
	})

	t.Run("terminal states", func(t *testing.T) {
		assert.True(t, m.IsFinal(stateClosed))
		assert.False(t, m.IsFinal(stateDraft))
		assert.False(t, m.IsFinal(stateOpen))
	})

	t.Run("allowed transitions are a copy", func(t *testing.T) {
		targets := m.AllowedTransitions(stateDraft)
		targets[0] = stateClosed
		assert.True(t, m.CanTransitionTo(stateDraft, stateOpen))
	})
}

func TestValidateReachability(t *testing.T) {
	t.Run("all states reachable", func(t *testing.T) {
		assert.NoError(t, newTestMachine().ValidateReachability(stateDraft))
	})

	t.Run("orphan non-terminal state is a defect", func(t *testing.T) {
		m := NewMachine(map[testState][]testState{
			stateDraft: {stateClosed},
			stateOpen:  {stateClosed}, // nothing leads to OPEN
		})
		err := m.ValidateReachability(stateDraft)
		require.Error(t, err)

		var bizErr *shared.BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, "UNREACHABLE_STATE", bizErr.Code)
		assert.True(t, bizErr.ShouldReport())
	})
}

func TestTransition(t *testing.T) {
	entityID := uuid.New()
	actor := uuid.New()

	t.Run("legal transition mutates state and returns a record", func(t *testing.T) {
		m := newTestMachine()
		e := &testEntity{state: stateDraft}

		record, err := m.Transition(e, "test_entity", entityID, stateOpen, actor)
		require.NoError(t, err)

		assert.Equal(t, stateOpen, e.state)
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, "test_entity", record.EntityType)
		assert.Equal(t, entityID, record.EntityID)
		assert.Equal(t, string(stateDraft), record.FromState)
		assert.Equal(t, string(stateOpen), record.ToState)
		assert.Equal(t, actor, record.ActorID)
		assert.False(t, record.OccurredAt.IsZero())
	})

	t.Run("illegal transition leaves entity untouched", func(t *testing.T) {
		m := newTestMachine()
		e := &testEntity{state: stateClosed}

		record, err := m.Transition(e, "test_entity", entityID, stateOpen, actor)
		require.Error(t, err)
		assert.Nil(t, record)
		assert.Equal(t, stateClosed, e.state)

		var bizErr *shared.BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, "INVALID_TRANSITION", bizErr.Code)
	})
}
