package drafts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/document"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE drafts (
  kind      TEXT    NOT NULL,
  remote_id TEXT    NOT NULL DEFAULT '',
  payload   TEXT    NOT NULL,
  saved_at  INTEGER NOT NULL,
  create_key TEXT   NOT NULL DEFAULT '',
  PRIMARY KEY (kind, remote_id)
);`)
	require.NoError(t, err)
	return db
}

func ts(sec int) time.Time {
	return time.Date(2024, 5, 1, 10, 0, sec, 0, time.UTC)
}

func TestUpsertAndGet_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := &document.Draft{
		Kind:    "report",
		Payload: document.Payload{"clientName": "Ann", "qty": 3.0, "tags": []any{"x"}},
		SavedAt: ts(1),
	}
	require.NoError(t, r.Upsert(ctx, in))

	got, err := r.Get(ctx, document.NewKey("report"))
	require.NoError(t, err)
	assert.Equal(t, "report", got.Kind)
	assert.Equal(t, "", got.RemoteID)
	assert.Equal(t, in.Payload, got.Payload)
	assert.True(t, got.SavedAt.Equal(ts(1)))
}

func TestUpsert_OverwritesInPlace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	key := document.Key{Kind: "report", RemoteID: "r-1"}

	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: key.Kind, RemoteID: key.RemoteID, Payload: document.Payload{"v": "old"}, SavedAt: ts(1)}))
	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: key.Kind, RemoteID: key.RemoteID, Payload: document.Payload{"v": "new"}, SavedAt: ts(2)}))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM drafts`).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Payload["v"])
	assert.True(t, got.SavedAt.Equal(ts(2)))
}

func TestUpsert_KeepsCreateKeyOfNewDraft(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", Payload: document.Payload{"v": "a"}, SavedAt: ts(1), CreateKey: "key-1"}))
	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", Payload: document.Payload{"v": "b"}, SavedAt: ts(2), CreateKey: "key-1"}))

	got, err := r.Get(ctx, document.NewKey("report"))
	require.NoError(t, err)
	assert.Equal(t, "key-1", got.CreateKey)
	assert.Equal(t, "b", got.Payload["v"])

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "key-1", list[0].CreateKey)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), document.Key{Kind: "report", RemoteID: "absent"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestKindsAndIDsDoNotCollide(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", Payload: document.Payload{"k": "report-new"}, SavedAt: ts(1)}))
	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "certificate", Payload: document.Payload{"k": "cert-new"}, SavedAt: ts(1)}))
	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", RemoteID: "r-1", Payload: document.Payload{"k": "report-1"}, SavedAt: ts(1)}))

	for key, want := range map[document.Key]string{
		document.NewKey("report"):         "report-new",
		document.NewKey("certificate"):    "cert-new",
		{Kind: "report", RemoteID: "r-1"}: "report-1",
	} {
		got, err := r.Get(ctx, key)
		require.NoError(t, err, key.String())
		assert.Equal(t, want, got.Payload["k"], key.String())
	}
}

func TestDelete_RemovesOnlyThatSlot(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", Payload: document.Payload{}, SavedAt: ts(1)}))
	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", RemoteID: "r-1", Payload: document.Payload{}, SavedAt: ts(1)}))

	require.NoError(t, r.Delete(ctx, document.NewKey("report")))
	require.NoError(t, r.Delete(ctx, document.NewKey("report")), "deleting an empty slot is not an error")

	_, err := r.Get(ctx, document.NewKey("report"))
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Get(ctx, document.Key{Kind: "report", RemoteID: "r-1"})
	require.NoError(t, err)
}

func TestExistsNew(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	ok, err := r.ExistsNew(ctx, "report")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", RemoteID: "r-1", Payload: document.Payload{}, SavedAt: ts(1)}))
	ok, err = r.ExistsNew(ctx, "report")
	require.NoError(t, err)
	assert.False(t, ok, "drafts of existing documents do not count")

	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "report", Payload: document.Payload{}, SavedAt: ts(1)}))
	ok, err = r.ExistsNew(ctx, "report")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ExistsNew(ctx, "certificate")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestList_NewestFirst(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "a", Payload: document.Payload{}, SavedAt: ts(1)}))
	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "b", Payload: document.Payload{}, SavedAt: ts(3)}))
	require.NoError(t, r.Upsert(ctx, &document.Draft{Kind: "c", Payload: document.Payload{}, SavedAt: ts(2)}))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{list[0].Kind, list[1].Kind, list[2].Kind})
}

func TestOperations_FailOnClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())
	ctx := context.Background()

	require.Error(t, r.Upsert(ctx, &document.Draft{Kind: "a", Payload: document.Payload{}}))
	_, err := r.Get(ctx, document.NewKey("a"))
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrorNotFound)
	require.Error(t, r.Delete(ctx, document.NewKey("a")))
	_, err = r.ExistsNew(ctx, "a")
	require.Error(t, err)
	_, err = r.List(ctx)
	require.Error(t, err)
}
