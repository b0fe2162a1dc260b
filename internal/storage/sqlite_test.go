package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raseed-app/raseed/internal/common"
	"github.com/raseed-app/raseed/internal/model"
	"github.com/raseed-app/raseed/internal/service"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestReceipts_SaveAndFetch(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	records := []service.RawRecord{
		{"id": "r1", "vendor": "Netflix", "total_amount": 15.99, "timestamp": "2024-03-01T10:00:00Z"},
		{"id": "r2", "store": "Costco", "amount": 120.50, "timestamp": "2024-03-15T10:00:00Z"},
		{"id": "r3", "vendor": "Mystery Shop", "total_amount": 9.99}, // no timestamp
	}
	require.NoError(t, store.SaveReceipts(ctx, "user001", records))

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	fetched, err := store.FetchReceipts(ctx, "user001", start, end)
	require.NoError(t, err)

	// Timestamped rows in range plus the NULL-timestamp row.
	require.Len(t, fetched, 3)

	t.Run("documents round-trip intact", func(t *testing.T) {
		byID := make(map[string]service.RawRecord)
		for _, raw := range fetched {
			id, _ := raw["id"].(string)
			byID[id] = raw
		}
		require.Contains(t, byID, "r2")
		assert.Equal(t, "Costco", byID["r2"]["store"])
	})

	t.Run("range excludes outside rows", func(t *testing.T) {
		narrow, err := store.FetchReceipts(ctx, "user001", start, start.AddDate(0, 0, 7))
		require.NoError(t, err)
		// r1 plus the NULL-timestamp r3.
		assert.Len(t, narrow, 2)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		other, err := store.FetchReceipts(ctx, "user002", start, end)
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestReceipts_ReimportIsIdempotent(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	records := []service.RawRecord{
		{"id": "r1", "vendor": "Netflix", "total_amount": 15.99, "timestamp": "2024-03-01T10:00:00Z"},
	}
	require.NoError(t, store.SaveReceipts(ctx, "user001", records))
	require.NoError(t, store.SaveReceipts(ctx, "user001", records))

	count, err := store.ReceiptCount(ctx, "user001")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReceipts_Validation(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	t.Run("missing id rejected", func(t *testing.T) {
		err := store.SaveReceipts(ctx, "user001", []service.RawRecord{{"vendor": "X", "total_amount": 1.0}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing id")
	})

	t.Run("empty slice rejected", func(t *testing.T) {
		err := store.SaveReceipts(ctx, "user001", []service.RawRecord{})
		assert.ErrorIs(t, err, ErrEmptySlice)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		now := time.Now()
		_, err := store.FetchReceipts(ctx, "user001", now, now.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}

func TestProfiles_SaveAndGet(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	profile := &model.UserProfile{
		UserID:           "user001",
		BudgetMonthly:    1500,
		SavingsPct:       12,
		PriceSensitivity: 0.4,
		HealthScore:      70,
	}
	require.NoError(t, store.SaveProfile(ctx, profile))

	loaded, err := store.GetProfile(ctx, "user001")
	require.NoError(t, err)
	assert.Equal(t, profile.UserID, loaded.UserID)
	assert.InDelta(t, 1500.0, loaded.BudgetMonthly, 0.001)
	assert.InDelta(t, 0.4, loaded.PriceSensitivity, 0.001)
	assert.Equal(t, 70, loaded.HealthScore)
}

func TestProfiles_GetMissing(t *testing.T) {
	store := testStorage(t)

	_, err := store.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProfiles_UpdateHealthScoreHysteresis(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, &model.UserProfile{
		UserID: "user001", PriceSensitivity: 0.5, HealthScore: 70,
	}))

	t.Run("same score skips the write", func(t *testing.T) {
		updated, err := store.UpdateHealthScore(ctx, "user001", 70)
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("one point delta writes", func(t *testing.T) {
		updated, err := store.UpdateHealthScore(ctx, "user001", 71)
		require.NoError(t, err)
		assert.True(t, updated)

		loaded, err := store.GetProfile(ctx, "user001")
		require.NoError(t, err)
		assert.Equal(t, 71, loaded.HealthScore)
	})

	t.Run("missing profile created on first write", func(t *testing.T) {
		updated, err := store.UpdateHealthScore(ctx, "newcomer", 55)
		require.NoError(t, err)
		assert.True(t, updated)

		loaded, err := store.GetProfile(ctx, "newcomer")
		require.NoError(t, err)
		assert.Equal(t, 55, loaded.HealthScore)
	})

	t.Run("out of range score rejected", func(t *testing.T) {
		_, err := store.UpdateHealthScore(ctx, "user001", 101)
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})
}

func TestInsights_SaveAndGet(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	payload := []byte(`{"type":"recurring_patterns","user_id":"user001"}`)
	require.NoError(t, store.SaveInsight(ctx, "user001", "recurring_patterns", payload))

	loaded, updatedAt, err := store.GetInsight(ctx, "user001", "recurring_patterns")
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(loaded))
	assert.False(t, updatedAt.IsZero())

	t.Run("replaces previous payload", func(t *testing.T) {
		updated := []byte(`{"type":"recurring_patterns","user_id":"user001","v":2}`)
		require.NoError(t, store.SaveInsight(ctx, "user001", "recurring_patterns", updated))

		loaded, _, err := store.GetInsight(ctx, "user001", "recurring_patterns")
		require.NoError(t, err)
		assert.JSONEq(t, string(updated), string(loaded))
	})

	t.Run("missing cache entry", func(t *testing.T) {
		_, _, err := store.GetInsight(ctx, "user001", "pantry_analysis")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	store := testStorage(t)
	// Second run must be a no-op, not an error.
	require.NoError(t, store.Migrate(context.Background()))
}
