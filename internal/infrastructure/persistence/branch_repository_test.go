package persistence

import (
	"context"
	"testing"

	"github.com/erp/branchcore/internal/domain/shared"
	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBranch(t *testing.T, repo *GormBranchRepository, code, name string) *tenant.Branch {
	t.Helper()
	branch, err := tenant.NewBranch(code, name)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), branch))
	return branch
}

func TestGormBranchRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find", func(t *testing.T) {
		repo := NewGormBranchRepository(newTestDB(t))
		branch := createBranch(t, repo, "HQ", "Headquarters")

		found, err := repo.FindByID(ctx, branch.ID)
		require.NoError(t, err)
		assert.Equal(t, "HQ", found.Code)
		assert.True(t, found.IsActive)

		found, err = repo.FindByCode(ctx, "HQ")
		require.NoError(t, err)
		assert.Equal(t, branch.ID, found.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := NewGormBranchRepository(newTestDB(t))
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update through save", func(t *testing.T) {
		repo := NewGormBranchRepository(newTestDB(t))
		branch := createBranch(t, repo, "HQ", "Headquarters")

		branch.Deactivate()
		require.NoError(t, repo.Save(ctx, branch))

		found, err := repo.FindByID(ctx, branch.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive)
	})

	t.Run("find all with sorting", func(t *testing.T) {
		repo := NewGormBranchRepository(newTestDB(t))
		createBranch(t, repo, "B2", "Beta")
		createBranch(t, repo, "B1", "Alpha")

		filter := shared.DefaultFilter()
		filter.OrderBy = "code"
		filter.OrderDir = "asc"

		branches, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, branches, 2)
		assert.Equal(t, "B1", branches[0].Code)
	})

	t.Run("soft delete hides the branch", func(t *testing.T) {
		repo := NewGormBranchRepository(newTestDB(t))
		branch := createBranch(t, repo, "HQ", "Headquarters")

		require.NoError(t, repo.Delete(ctx, branch.ID))

		_, err := repo.FindByID(ctx, branch.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, total, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("deleting a missing branch", func(t *testing.T) {
		repo := NewGormBranchRepository(newTestDB(t))
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
