package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/compass/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadBudget(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	savedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	doc := &domain.ProductBudgetDocument{
		ProductID: "prod-1",
		Estimates: map[string]domain.BudgetEstimate{
			"rel-1": {ReleaseID: "rel-1", TotalCost: 76320, Source: domain.SourceUserConfigured},
		},
		TotalBudget: 76320,
	}
	require.NoError(t, store.SaveBudget(ctx, "prod-1", doc, savedAt))

	loaded, err := store.LoadBudget(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", loaded.ProductID)
	assert.Equal(t, 76320.0, loaded.Estimates["rel-1"].TotalCost)

	// Loaded documents carry the local-only stamp.
	assert.True(t, loaded.SavedLocally)
	require.NotNil(t, loaded.SavedAt)
	assert.Equal(t, savedAt, loaded.SavedAt.UTC())
}

func TestSaveBudget_Overwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveBudget(ctx, "prod-1", &domain.ProductBudgetDocument{TotalBudget: 100}, now))
	require.NoError(t, store.SaveBudget(ctx, "prod-1", &domain.ProductBudgetDocument{TotalBudget: 200}, now))

	loaded, err := store.LoadBudget(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 200.0, loaded.TotalBudget)
}

func TestLoadBudget_Missing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadBudget(context.Background(), "prod-unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveBudget_KeysPerProduct(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveBudget(ctx, "prod-1", &domain.ProductBudgetDocument{ProductID: "prod-1"}, now))
	require.NoError(t, store.SaveBudget(ctx, "prod-2", &domain.ProductBudgetDocument{ProductID: "prod-2"}, now))

	one, err := store.LoadBudget(ctx, "prod-1")
	require.NoError(t, err)
	two, err := store.LoadBudget(ctx, "prod-2")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", one.ProductID)
	assert.Equal(t, "prod-2", two.ProductID)
}

func TestDeleteBudget(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBudget(ctx, "prod-1", &domain.ProductBudgetDocument{}, time.Now().UTC()))
	require.NoError(t, store.DeleteBudget(ctx, "prod-1"))

	_, err := store.LoadBudget(ctx, "prod-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.DeleteBudget(ctx, "prod-1"))
}
