package checks

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"grid-sync/core/storage/mocks"
	"grid-sync/feature/outbox"
	outboxmodels "grid-sync/feature/outbox/models"
	"grid-sync/feature/rows"
	rowsmodels "grid-sync/feature/rows/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

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

func setupTestDB(t *testing.T, migrate bool) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	if migrate {
		require.NoError(t, rows.Migrate(db))
		require.NoError(t, outbox.Migrate(db))
		require.NoError(t, outbox.InstallTriggers(db))
	}
	return db
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, rowsmodels.SyncedRow{})
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_SQLite(t *testing.T) {
	t.Run("migrated", func(t *testing.T) {
		report, err := CheckSchema(setupTestDB(t, true), rowsmodels.SyncedRow{}, outboxmodels.OutboxEntry{})
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.Equal(t, "ok", report.Tables[rowsmodels.TableName].Status)
		assert.Equal(t, "ok", report.Tables[outboxmodels.TableName].Status)
	})

	t.Run("missing tables", func(t *testing.T) {
		report, err := CheckSchema(setupTestDB(t, false), rowsmodels.SyncedRow{})
		require.NoError(t, err)
		assert.False(t, report.Matched)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "does not exist")
	})
}

func TestCheckSchema_MySQLMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	cols := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "varchar(191)", "NO", "PRI", nil, "").
		AddRow("row_json", "longtext", "NO", "", nil, "").
		AddRow("row_hash", "text", "NO", "", nil, "").
		AddRow("deleted_at", "datetime(3)", "YES", "MUL", nil, "").
		AddRow("source", "varchar(16)", "NO", "", "store", "").
		AddRow("updated_at", "datetime(3)", "NO", "MUL", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `synced_rows`")).WillReturnRows(cols)

	report, err := CheckSchema(db, rowsmodels.SyncedRow{})
	require.NoError(t, err)
	assert.False(t, report.Matched)

	tbl := report.Tables[rowsmodels.TableName]
	assert.Equal(t, "error", tbl.Status)
	assert.Equal(t, []string{"trace_id"}, tbl.MissingColumns)
	assert.Equal(t, []string{"row_hash: expected char(64), got text"}, tbl.TypeMismatches)
}

func TestCheckTriggers(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		report, err := CheckTriggers(setupTestDB(t, true), rowsmodels.TableName, outbox.TriggerNames("sqlite"))
		require.NoError(t, err)
		assert.Equal(t, "ok", report.Status)
		assert.Empty(t, report.Missing)
	})

	t.Run("missing", func(t *testing.T) {
		db := setupTestDB(t, false)
		require.NoError(t, rows.Migrate(db))

		report, err := CheckTriggers(db, rowsmodels.TableName, outbox.TriggerNames("sqlite"))
		require.NoError(t, err)
		assert.Equal(t, "error", report.Status)
		assert.Len(t, report.Missing, 3)
	})

	t.Run("mysql query", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT TRIGGER_NAME FROM information_schema.TRIGGERS")).
			WithArgs(rowsmodels.TableName).
			WillReturnRows(sqlmock.NewRows([]string{"TRIGGER_NAME"}).AddRow("trg_synced_rows_outbox_ai"))

		report, err := CheckTriggers(db, rowsmodels.TableName, outbox.TriggerNames("mysql"))
		require.NoError(t, err)
		assert.Equal(t, []string{"trg_synced_rows_outbox_au"}, report.Missing)
	})
}

func TestCheckGrid(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		values     [][]string
		wantStatus string
		check      func(t *testing.T, r *GridReport)
	}{
		{
			name:       "healthy",
			headers:    []string{"id", "name"},
			values:     [][]string{{"ID", "Name"}, {"1", "a"}, {"2", "b"}, {}},
			wantStatus: "ok",
			check: func(t *testing.T, r *GridReport) {
				assert.Equal(t, 2, r.DataRows)
				assert.Zero(t, r.RowsWithoutID)
			},
		},
		{
			name:       "no id column",
			headers:    []string{"name"},
			values:     [][]string{{"Name"}, {"a"}},
			wantStatus: "error",
			check: func(t *testing.T, r *GridReport) {
				assert.False(t, r.HasIDColumn)
			},
		},
		{
			name:       "duplicates and orphans",
			headers:    []string{"id", "name", "", "name"},
			values:     [][]string{{"ID", "Name", "!", "name"}, {"1", "a"}, {" 1 ", "b"}, {"", "orphan"}},
			wantStatus: "warning",
			check: func(t *testing.T, r *GridReport) {
				assert.Equal(t, []string{"1"}, r.DuplicateIDs)
				assert.Equal(t, 1, r.RowsWithoutID)
				assert.Equal(t, []string{"name"}, r.DuplicateHeaders)
				assert.Equal(t, []int{3}, r.EmptyHeaders)
			},
		},
		{
			name:       "empty grid",
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := CheckGrid(tt.headers, tt.values)
			assert.Equal(t, tt.wantStatus, report.Status)
			if tt.check != nil {
				tt.check(t, report)
			}
		})
	}
}

func TestCheckStorage(t *testing.T) {
	t.Run("counts snapshots", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "snapshots").Return(true, nil)
		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: "grid/a.json"}
		ch <- minio.ObjectInfo{Key: "grid/b.json"}
		close(ch)
		client.On("ListObjects", mock.Anything, "snapshots", minio.ListObjectsOptions{Prefix: "grid/", Recursive: true}).
			Return((<-chan minio.ObjectInfo)(ch))

		report, err := CheckStorage(context.Background(), client, "snapshots", "grid")
		require.NoError(t, err)
		assert.True(t, report.Exists)
		assert.Equal(t, 2, report.Snapshots)
	})

	t.Run("missing bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "snapshots").Return(false, nil)

		report, err := CheckStorage(context.Background(), client, "snapshots", "grid")
		require.NoError(t, err)
		assert.False(t, report.Exists)
		client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "snapshots").Return(false, errors.New("timeout"))

		_, err := CheckStorage(context.Background(), client, "snapshots", "grid")
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestFixStorage(t *testing.T) {
	client := new(mocks.Client)
	client.On("MakeBucket", mock.Anything, "snapshots", minio.MakeBucketOptions{}).Return(nil)

	require.NoError(t, FixStorage(context.Background(), client, "snapshots", zap.NewNop()))
	client.AssertExpectations(t)
}
