package rows

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"grid-sync/core/content"
	"grid-sync/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates a migrated in-memory SQLite DB.
func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

// newTestRepository returns a repository whose clock advances one second per write.
func newTestRepository(db *gorm.DB) *Repository {
	repo := NewRepository(db)
	clock := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func content2(pairs ...string) content.Content {
	c := content.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Set(pairs[i], content.String(pairs[i+1]))
	}
	return c
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(setupTestDB(t))

	rec, err := repo.Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRepository_UpsertAndGet(t *testing.T) {
	repo := newTestRepository(setupTestDB(t))
	ctx := context.Background()

	c := content2("id", "1", "name", "alpha")
	require.NoError(t, repo.Upsert(ctx, "1", c, reconcile.ProvenanceGrid, "grid-abc"))

	rec, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, c.Fingerprint(), rec.Hash)
	assert.True(t, rec.Content.Equal(c))
	assert.Equal(t, reconcile.ProvenanceGrid, rec.Source)
	assert.Equal(t, "grid-abc", rec.TraceID)
	assert.True(t, rec.Active())

	// Replace
	c2 := content2("id", "1", "name", "beta")
	require.NoError(t, repo.Upsert(ctx, "1", c2, reconcile.ProvenanceStore, ""))

	rec, err = repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "beta", rec.Content.Text("name"))
	assert.Equal(t, c2.Fingerprint(), rec.Hash)
	assert.Equal(t, reconcile.ProvenanceStore, rec.Source)
	assert.Empty(t, rec.TraceID)
}

func TestRepository_UpsertValidation(t *testing.T) {
	repo := newTestRepository(setupTestDB(t))
	ctx := context.Background()

	assert.Error(t, repo.Upsert(ctx, "", content2("a", "b"), reconcile.ProvenanceGrid, ""))
	assert.Error(t, repo.Upsert(ctx, "1", content2("a", "b"), reconcile.Provenance("sheet"), ""))
}

func TestRepository_SoftDeleteAndRestore(t *testing.T) {
	repo := newTestRepository(setupTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, repo.Upsert(ctx, id, content2("id", id), reconcile.ProvenanceGrid, "t"))
	}

	require.NoError(t, repo.SoftDelete(ctx, []string{"1", "3", "404"}, reconcile.ProvenanceGrid, "grid-del"))

	ids, err := repo.ListActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids)

	rec, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, rec.Active())
	assert.Equal(t, "1", rec.Content.Text("id"), "content is retained")
	assert.Equal(t, "grid-del", rec.TraceID)
	deletedAt := *rec.DeletedAt

	// Deleting again leaves the first deletion untouched.
	require.NoError(t, repo.SoftDelete(ctx, []string{"1"}, reconcile.ProvenanceStore, "again"))
	rec, err = repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.True(t, deletedAt.Equal(*rec.DeletedAt))
	assert.Equal(t, reconcile.ProvenanceGrid, rec.Source)

	// Upsert clears the deletion mark.
	require.NoError(t, repo.Upsert(ctx, "1", content2("id", "1"), reconcile.ProvenanceGrid, "t"))
	ids, err = repo.ListActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)

	assert.NoError(t, repo.SoftDelete(ctx, nil, reconcile.ProvenanceGrid, ""))
}

func TestRepository_Recent(t *testing.T) {
	repo := newTestRepository(setupTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Upsert(ctx, id, content2("id", id), reconcile.ProvenanceStore, ""))
	}
	require.NoError(t, repo.Upsert(ctx, "a", content2("id", "a", "v", "2"), reconcile.ProvenanceStore, ""))

	recs, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, "c", recs[1].ID)
}

func TestRepository_UpsertSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newTestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `synced_rows`") + ".*" +
		regexp.QuoteMeta("ON DUPLICATE KEY UPDATE `row_json`=VALUES(`row_json`),`row_hash`=VALUES(`row_hash`),`deleted_at`=VALUES(`deleted_at`),`source`=VALUES(`source`),`trace_id`=VALUES(`trace_id`),`updated_at`=VALUES(`updated_at`)")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Upsert(context.Background(), "1", content2("id", "1"), reconcile.ProvenanceStore, "manual-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDeleteSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newTestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `synced_rows` SET") + ".*" +
		regexp.QuoteMeta("id IN (?,?) AND deleted_at IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.SoftDelete(context.Background(), []string{"1", "2"}, reconcile.ProvenanceGrid, "grid-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveIDsError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newTestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `synced_rows` WHERE deleted_at IS NULL")).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := repo.ListActiveIDs(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}
