package outbox

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"grid-sync/core/loader"
	"grid-sync/core/reconcile"
	"grid-sync/feature/rows"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleStats(t *testing.T) {
	db := setupTestDB(t)
	repo := rows.NewRepository(db)
	require.NoError(t, repo.Upsert(context.Background(), "1", doc("id", "1"), reconcile.ProvenanceStore, ""))

	m := loader.NewManager(zap.NewNop())
	m.Register(NewFeature(NewQueue(db), zap.NewNop()))
	app := fiber.New()
	require.NoError(t, m.LoadAll(app.Group("/api")))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/outbox/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		OK      bool  `json:"ok"`
		Pending int64 `json:"pending"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.OK)
	assert.Equal(t, int64(1), body.Pending)
}

func TestHandleStats_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT count").WillReturnError(assert.AnError)

	app := fiber.New()
	NewHandler(NewQueue(db), zap.NewNop()).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/outbox/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
