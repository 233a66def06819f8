package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillsaykov/lookup-gate/internal/config"
	"github.com/kirillsaykov/lookup-gate/internal/lookupapi"
	"github.com/kirillsaykov/lookup-gate/internal/models"
	"github.com/kirillsaykov/lookup-gate/internal/ratelimit"
	"github.com/kirillsaykov/lookup-gate/internal/services/entitlement"
	"github.com/kirillsaykov/lookup-gate/internal/storage"
)

// Сквозной сценарий на реальных компонентах: хранилище на диске,
// настоящий entitlement и клиент против httptest-сервера.
func TestHandleLookup_EndToEnd(t *testing.T) {
	var upstreamCalls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		upstreamCalls++
		_, _ = w.Write([]byte(`{"name":"X","mobile":"9876543210"}`))
	}))
	defer upstream.Close()

	store, err := storage.New(filepath.Join(t.TempDir(), "users.json"), newNoopLogger())
	require.NoError(t, err)
	entitlements := entitlement.New(store, newNoopLogger())
	fetcher := lookupapi.NewClient(config.LookupAPI{
		BaseURL:       upstream.URL,
		APIKey:        "k",
		TimeoutLookup: 5 * time.Second,
	})
	// Нулевой интервал, чтобы второй запрос не съел лимитер.
	limiter := ratelimit.NewPerUser(0)

	svc := New(newNoopLogger(), limiter, entitlements, store, fetcher, nil, time.Minute)
	event := models.LookupRequested{UserID: "42", QueryKey: "9876543210"}

	// Первый запрос: бесплатный поиск, успех, счётчики растут.
	msg, err := svc.HandleLookup(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "X")
	assert.Contains(t, msg.Text, "9876543210")
	assert.Contains(t, msg.Text, "free search has been used")
	assert.Equal(t, 1, upstreamCalls)

	rec, err := store.Get("42")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.FreeTrialsUsed)
	assert.Equal(t, 1, rec.TotalLookups)

	// Второй идентичный запрос: лимит исчерпан, счётчики не меняются,
	// апстрим не вызывается.
	msg, err = svc.HandleLookup(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Contains(t, msg.Text, "Subscribe")
	assert.Equal(t, 1, upstreamCalls)

	rec, err = store.Get("42")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.FreeTrialsUsed)
	assert.Equal(t, 1, rec.TotalLookups)

	// После выдачи подписки поиск снова доступен.
	_, err = entitlements.Grant("42", 30)
	require.NoError(t, err)

	msg, err = svc.HandleLookup(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.NotContains(t, msg.Text, "free search has been used")
	assert.Equal(t, 2, upstreamCalls)

	rec, err = store.Get("42")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.FreeTrialsUsed, "subscription lookups do not touch the trial counter")
	assert.Equal(t, 2, rec.TotalLookups)
}
