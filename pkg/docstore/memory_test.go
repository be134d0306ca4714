package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRequests(t *testing.T, s *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	docs := map[string]Document{
		"r1": {"status": "new", "equipmentId": "eq1", "updatedAt": "2024-01-01T10:00:00.000Z"},
		"r2": {"status": "new", "equipmentId": "eq2", "updatedAt": "2024-01-03T10:00:00.000Z"},
		"r3": {"status": "in_progress", "equipmentId": "eq1", "updatedAt": "2024-01-02T10:00:00.000Z"},
		"r4": {"status": "repaired", "equipmentId": "eq1", "durationHours": 2},
	}
	for id, doc := range docs {
		require.NoError(t, s.Put(ctx, "maintenanceRequests", id, doc))
	}
}

func ids(snaps []Snapshot) []string {
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.ID)
	}
	return out
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "equipment", "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_CreateAssignsID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, "technicians", Document{"displayName": "Alice"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap, err := s.Get(ctx, "technicians", id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, "Alice", snap.Data["displayName"])
}

func TestMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "maintenanceTeams", "t1", Document{"technicianIds": []string{"a"}}))

	first, err := s.Get(ctx, "maintenanceTeams", "t1")
	require.NoError(t, err)
	first.Data["technicianIds"] = []string{"hacked"}

	second, err := s.Get(ctx, "maintenanceTeams", "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, StringSlice(second.Data["technicianIds"]))
}

func TestMemoryStore_QueryFilterOrderLimit(t *testing.T) {
	s := NewMemoryStore()
	seedRequests(t, s)
	ctx := context.Background()

	got, err := s.Query(ctx, From("maintenanceRequests").Where("status", "new").Order("updatedAt", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids(got))

	got, err = s.Query(ctx, From("maintenanceRequests").WhereIn("status", "new", "in_progress").Order("updatedAt", false).Take(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r3"}, ids(got))

	got, err = s.Query(ctx, From("maintenanceRequests").Where("status", "new").Where("equipmentId", "eq1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids(got))

	got, err = s.Query(ctx, From("maintenanceRequests").Where("durationHours", 2.0))
	require.NoError(t, err)
	assert.Equal(t, []string{"r4"}, ids(got))
}

func TestMemoryStore_MissingFieldsSortFirst(t *testing.T) {
	s := NewMemoryStore()
	seedRequests(t, s)

	got, err := s.Query(context.Background(), From("maintenanceRequests").Order("updatedAt", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"r4", "r1", "r3", "r2"}, ids(got))
}

func TestMemoryStore_QueryRejectsBadField(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Query(context.Background(), From("equipment").Where("name; DROP", "x"))
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestMemoryStore_MergeKeepsOtherFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "equipment", "eq1", Document{"name": "Press", "status": "active"}))

	require.NoError(t, s.Merge(ctx, "equipment", "eq1", Document{"status": "scrapped"}))
	snap, err := s.Get(ctx, "equipment", "eq1")
	require.NoError(t, err)
	assert.Equal(t, "Press", snap.Data["name"])
	assert.Equal(t, "scrapped", snap.Data["status"])

	assert.True(t, errors.Is(s.Merge(ctx, "equipment", "ghost", Document{"status": "x"}), ErrNotFound))
}

func TestMemoryStore_RunBatchIsAllOrNothing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "maintenanceRequests", "r1", Document{"status": "new"}))

	err := s.RunBatch(ctx, func(b Batch) error {
		if err := b.Merge("maintenanceRequests", "r1", Document{"status": "scrap"}); err != nil {
			return err
		}
		return b.Merge("equipment", "missing", Document{"status": "scrapped"})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	snap, err := s.Get(ctx, "maintenanceRequests", "r1")
	require.NoError(t, err)
	assert.Equal(t, "new", snap.Data["status"])
}

func TestCompare_TypeOrdering(t *testing.T) {
	assert.Negative(t, Compare(nil, false))
	assert.Negative(t, Compare(true, 1))
	assert.Negative(t, Compare(1, "a"))
	assert.Zero(t, Compare(2, 2.0))
	assert.Positive(t, Compare("b", "a"))
}
