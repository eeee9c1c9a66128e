package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/services"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

func newTasksApp(t *testing.T, store *storage.MemoryStore) *fiber.App {
	t.Helper()

	failover := ai.NewFailover(cannedBackend{reply: "Drink water."}, nil)
	tips := services.NewTipGenerator(failover, store)
	broadcaster := services.NewTipBroadcaster(store, tips, services.NoopSender{})

	app := fiber.New()
	app.Post("/tasks/send-daily-tips", NewTasksHandler(broadcaster).HandleSendDailyTips)
	return app
}

func postTips(t *testing.T, app *fiber.App, key string) (int, string) {
	t.Helper()

	req := httptest.NewRequest("POST", "/tasks/send-daily-tips", nil)
	if key != "" {
		req.Header.Set("X-CRON-KEY", key)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSendDailyTipsRejectsWithoutSecret(t *testing.T) {
	t.Setenv("CRON_SECRET", "")
	app := newTasksApp(t, storage.NewMemoryStore())

	status, _ := postTips(t, app, "anything")
	assert.Equal(t, fiber.StatusForbidden, status, "an unset secret closes the endpoint entirely")
}

func TestSendDailyTipsRejectsWrongKey(t *testing.T) {
	t.Setenv("CRON_SECRET", "s3cret")
	app := newTasksApp(t, storage.NewMemoryStore())

	status, _ := postTips(t, app, "wrong")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = postTips(t, app, "")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestSendDailyTipsBroadcasts(t *testing.T) {
	t.Setenv("CRON_SECRET", "s3cret")

	store := storage.NewMemoryStore()
	_, _, err := store.GetOrCreateUser("+254700000001")
	require.NoError(t, err)
	_, _, err = store.GetOrCreateUser("+254700000002")
	require.NoError(t, err)

	app := newTasksApp(t, store)

	status, body := postTips(t, app, "s3cret")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"sent":2`)
	assert.Len(t, store.HealthTips(), 2)
}
