package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"gear-guard/pkg/docstore"
)

func TestFromBSON_NormalizesDriverTypes(t *testing.T) {
	raw := bson.M{
		"_id":           "eq1",
		"name":          "Press",
		"count":         int32(3),
		"big":           int64(7),
		"technicianIds": primitive.A{"a", "b"},
		"nested":        bson.D{{Key: "x", Value: int32(1)}},
	}

	snap := toSnapshot(raw)
	assert.Equal(t, "eq1", snap.ID)
	assert.NotContains(t, snap.Data, "_id")
	assert.Equal(t, 3.0, snap.Data["count"])
	assert.Equal(t, 7.0, snap.Data["big"])
	assert.Equal(t, []string{"a", "b"}, docstore.StringSlice(snap.Data["technicianIds"]))
	assert.Equal(t, map[string]any{"x": 1.0}, snap.Data["nested"])
}

func TestToBSON_DropsID(t *testing.T) {
	out := toBSON(docstore.Document{"_id": "x", "name": "Press"})
	assert.Equal(t, bson.M{"name": "Press"}, out)
}

func TestWrapErr_ServerSelectionIsUnavailable(t *testing.T) {
	err := wrapErr(errors.New("server selection error: context deadline exceeded"))
	assert.True(t, errors.Is(err, docstore.ErrUnavailable))
	assert.Nil(t, wrapErr(nil))
}

func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI не задан")
	}
	ctx := context.Background()
	s, err := Connect(ctx, uri, "gearguard_test", zap.NewNop())
	require.NoError(t, err)
	defer s.Close(ctx)
	require.NoError(t, s.db.Drop(ctx))

	id, err := s.Create(ctx, "maintenanceRequests", docstore.Document{"status": "new", "updatedAt": "2024-01-01T00:00:00.000Z"})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "maintenanceRequests", "r2", docstore.Document{"status": "in_progress", "updatedAt": "2024-01-02T00:00:00.000Z"}))

	got, err := s.Query(ctx, docstore.From("maintenanceRequests").WhereIn("status", "new", "in_progress").Order("updatedAt", true))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, id, got[1].ID)

	require.NoError(t, s.Merge(ctx, "maintenanceRequests", id, docstore.Document{"status": "scrap"}))
	snap, err := s.Get(ctx, "maintenanceRequests", id)
	require.NoError(t, err)
	assert.Equal(t, "scrap", snap.Data["status"])

	again, err := s.Get(ctx, "maintenanceRequests", id)
	require.NoError(t, err)
	assert.Equal(t, snap, again)

	assert.True(t, errors.Is(s.Merge(ctx, "maintenanceRequests", "ghost", docstore.Document{"a": 1}), docstore.ErrNotFound))
}
