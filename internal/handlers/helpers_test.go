package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/store"
	"easel-ticket/internal/testutil"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)

type testEnv struct {
	app   core.App
	store *store.Store
	clock clock.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	app := testutil.NewApp(t)
	return &testEnv{app: app, store: store.New(app), clock: clock.NewFixed(testNow)}
}

// request builds a RequestEvent around a recorder. pathValues alternate
// name and value.
func (env *testEnv) request(method, target string, body any, pathValues ...string) (*core.RequestEvent, *httptest.ResponseRecorder) {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}

	rec := httptest.NewRecorder()
	e := &core.RequestEvent{App: env.app}
	e.Request = req
	e.Response = rec
	return e, rec
}

func (env *testEnv) seedOrder(t *testing.T, sessionID string, st models.OrderStatus) *models.Order {
	t.Helper()
	o := &models.Order{
		StripeSessionID:  sessionID,
		PerformanceDate:  "2026-11-20",
		GeneralQuantity:  1,
		ReservedQuantity: 1,
		GeneralPrice:     4500,
		ReservedPrice:    5500,
		TotalAmount:      10000,
		CustomerName:     "Hanako",
		CustomerEmail:    "hanako@example.com",
		Status:           st,
	}
	require.NoError(t, env.store.CreateOrder(context.Background(), o))
	return o
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func assertAPIError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var apiErr *router.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Status)
	if msg != "" {
		// The framework sentenizes messages.
		assert.Contains(t, strings.ToLower(apiErr.Message), strings.ToLower(msg))
	}
}
