package pgstore

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gear-guard/pkg/docstore"
)

var testStore *Store

// TestMain подключается к тестовой БД, если задан TEST_DATABASE_URL.
// Без неё интеграционные тесты пропускаются, а проверки SQL выполняются всегда.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		var err error
		testStore, err = Connect(context.Background(), dsn, true, zap.NewNop())
		if err != nil {
			log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
		}
	}
	code := m.Run()
	if testStore != nil {
		_ = testStore.Close(context.Background())
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *Store {
	t.Helper()
	if testStore == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	_, err := testStore.pool.Exec(context.Background(), `TRUNCATE TABLE documents`)
	require.NoError(t, err, "Не удалось очистить таблицу")
	return testStore
}

func TestBuildSelect_EqualityAndOrder(t *testing.T) {
	q := docstore.From("maintenanceRequests").
		Where("status", "new").
		Order("updatedAt", true).
		Take(200)

	sql, args, err := buildSelect(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "SELECT id, data FROM documents WHERE collection = $1")
	assert.Contains(t, sql, "data @> $2::jsonb")
	assert.Contains(t, sql, "ORDER BY data->'updatedAt' DESC NULLS LAST, id ASC")
	assert.Contains(t, sql, "LIMIT 200")
	assert.Equal(t, []interface{}{"maintenanceRequests", `{"status":"new"}`}, args)
}

func TestBuildSelect_InFilter(t *testing.T) {
	q := docstore.From("maintenanceRequests").WhereIn("status", "new", "in_progress")

	sql, args, err := buildSelect(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "data->>($2::text) = ANY($3::text[])")
	assert.NotContains(t, sql, "LIMIT")
	require.Len(t, args, 3)
	assert.Equal(t, "status", args[1])
	assert.Equal(t, []string{"new", "in_progress"}, args[2])
}

func TestBuildSelect_AscendingPutsNullsFirst(t *testing.T) {
	sql, _, err := buildSelect(docstore.From("maintenanceRequests").Order("scheduledAt", false))
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY data->'scheduledAt' ASC NULLS FIRST, id ASC")
}

func TestBuildSelect_RejectsUnsafeField(t *testing.T) {
	_, _, err := buildSelect(docstore.From("equipment").Order("name' DESC; --", false))
	assert.True(t, errors.Is(err, docstore.ErrInvalid))
}

func TestStore_Integration_CRUD(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "equipment", docstore.Document{"name": "Press", "status": "active", "defaultTeamId": nil})
	require.NoError(t, err)

	snap, err := s.Get(ctx, "equipment", id)
	require.NoError(t, err)
	assert.Equal(t, "Press", snap.Data["name"])
	assert.Nil(t, snap.Data["defaultTeamId"])

	require.NoError(t, s.Merge(ctx, "equipment", id, docstore.Document{"status": "scrapped"}))
	snap, err = s.Get(ctx, "equipment", id)
	require.NoError(t, err)
	assert.Equal(t, "scrapped", snap.Data["status"])
	assert.Equal(t, "Press", snap.Data["name"])

	assert.True(t, errors.Is(s.Merge(ctx, "equipment", "ghost", docstore.Document{"a": 1}), docstore.ErrNotFound))
	_, err = s.Get(ctx, "equipment", "ghost")
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestStore_Integration_Query(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "maintenanceRequests", "r1", docstore.Document{"status": "new", "updatedAt": "2024-01-01T00:00:00.000Z"}))
	require.NoError(t, s.Put(ctx, "maintenanceRequests", "r2", docstore.Document{"status": "new", "updatedAt": "2024-01-02T00:00:00.000Z"}))
	require.NoError(t, s.Put(ctx, "maintenanceRequests", "r3", docstore.Document{"status": "scrap", "updatedAt": "2024-01-03T00:00:00.000Z"}))

	got, err := s.Query(ctx, docstore.From("maintenanceRequests").Where("status", "new").Order("updatedAt", true))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, "r1", got[1].ID)

	got, err = s.Query(ctx, docstore.From("maintenanceRequests").WhereIn("status", "new", "in_progress").Take(1))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_Integration_BatchRollsBack(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "maintenanceRequests", "r1", docstore.Document{"status": "new"}))

	err := s.RunBatch(ctx, func(b docstore.Batch) error {
		if err := b.Merge("maintenanceRequests", "r1", docstore.Document{"status": "scrap"}); err != nil {
			return err
		}
		return b.Merge("equipment", "missing", docstore.Document{"status": "scrapped"})
	})
	require.True(t, errors.Is(err, docstore.ErrNotFound))

	snap, err := s.Get(ctx, "maintenanceRequests", "r1")
	require.NoError(t, err)
	assert.Equal(t, "new", snap.Data["status"])
}

func TestStore_Integration_RepeatedGetIsStable(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "maintenanceRequests", "r1", docstore.Document{
		"status": "repaired", "durationHours": 2.5, "technicianId": nil,
		"updatedAt": "2024-01-01T00:00:00.000Z",
	}))

	first, err := s.Get(ctx, "maintenanceRequests", "r1")
	require.NoError(t, err)
	second, err := s.Get(ctx, "maintenanceRequests", "r1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2.5, second.Data["durationHours"])
}
