package jamai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, projectID string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.JamAIConfig{
		BaseURL:   server.URL,
		APIKey:    "jamai_sk_test",
		ProjectID: projectID,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestClient_AddRow(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/gen_tables/chat/rows/add", r.URL.Path)
		assert.Equal(t, "Bearer jamai_sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"rows":[{"row_id":"r-1","columns":{
			"AI":{"choices":[{"message":{"content":"Please rest and hydrate."}}]},
			"User":"hello",
			"Empty":{"choices":[]}
		}}]}`)
	}, "")

	row, err := client.AddRow(context.Background(), providers.TableKindChat, "health_assistant", map[string]interface{}{"User": "hello"})
	require.NoError(t, err)

	assert.Equal(t, "r-1", row.RowID)
	assert.Equal(t, "Please rest and hydrate.", row.Text("AI"))
	assert.Equal(t, "", row.Text("User"))
	assert.Equal(t, "", row.Text("Empty"))

	assert.Equal(t, "health_assistant", gotBody["table_id"])
	assert.Equal(t, false, gotBody["stream"])
	assert.Equal(t, []interface{}{map[string]interface{}{"User": "hello"}}, gotBody["data"])
}

func TestClient_AddRow_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"table not found"}`)
	}, "")

	_, err := client.AddRow(context.Background(), providers.TableKindAction, "missing", map[string]interface{}{})
	require.Error(t, err)

	var upstream *providers.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.StatusCode)
	assert.Equal(t, "table not found", upstream.Message)
}

func TestClient_ListRows_PrimaryPath(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v2/gen_tables/action/rows/list", r.URL.Path)
		assert.Equal(t, "appointment_bookings", r.URL.Query().Get("table_id"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		assert.Equal(t, "proj_1", r.Header.Get("X-PROJECT-ID"))
		assert.Empty(t, r.URL.Query().Get("project_id"))
		_, _ = io.WriteString(w, `{"rows":[{"ID":"row-1"},{"ID":"row-2"}]}`)
	}, "proj_1")

	rows, err := client.ListRows(context.Background(), providers.TableKindAction, "appointment_bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "row-1", rows[0]["ID"])
	assert.Equal(t, 1, calls)
}

func TestClient_ListRows_FallsBackToV1Once(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/v2/gen_tables/action/rows/list" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "/api/v1/gen_tables/action/rows", r.URL.Path)
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		assert.Equal(t, "proj_1", r.URL.Query().Get("project_id"))
		_, _ = io.WriteString(w, `{"items":[{"ID":"row-9"}]}`)
	}, "proj_1")

	rows, err := client.ListRows(context.Background(), providers.TableKindAction, "appointment_bookings")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "row-9", rows[0]["ID"])
	assert.Equal(t, []string{"/api/v2/gen_tables/action/rows/list", "/api/v1/gen_tables/action/rows"}, paths)
}

func TestClient_ListRows_FallbackFailureMirrorsStatus(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"project access denied"}`)
	}, "")

	_, err := client.ListRows(context.Background(), providers.TableKindAction, "appointment_bookings")

	var upstream *providers.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Equal(t, "project access denied", upstream.Message)
	assert.Equal(t, 2, calls)
}

func TestClient_UpdateRow(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/gen_tables/action/rows/update", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"ok":true}`)
	}, "")

	body, err := client.UpdateRow(context.Background(), providers.TableKindAction, "appointment_bookings", "row-1",
		map[string]interface{}{"current_state": "Completed"})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"ok": true}, body)
	assert.Equal(t, "row-1", gotBody["row_id"])
	assert.Equal(t, "appointment_bookings", gotBody["table_id"])
	_, hasProject := gotBody["project_id"]
	assert.False(t, hasProject)
	assert.Equal(t, map[string]interface{}{"current_state": "Completed"}, gotBody["data"])
}

func TestClient_ListTables(t *testing.T) {
	t.Run("returns decoded body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/gen_tables/action/tables", r.URL.Path)
			assert.Equal(t, "true", r.URL.Query().Get("count_rows"))
			assert.Equal(t, "proj_1", r.URL.Query().Get("project_id"))
			_, _ = io.WriteString(w, `{"items":[{"id":"appointment_bookings","num_rows":3}]}`)
		}, "proj_1")

		body, err := client.ListTables(context.Background(), providers.TableKindAction)
		require.NoError(t, err)
		assert.Contains(t, body.(map[string]interface{}), "items")
	})

	t.Run("unreadable success body becomes empty object", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		}, "")

		body, err := client.ListTables(context.Background(), providers.TableKindAction)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{}, body)
	})

	t.Run("upstream error keeps raw body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"bad key","detail":"expired"}`)
		}, "")

		_, err := client.ListTables(context.Background(), providers.TableKindAction)
		var upstream *providers.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, "bad key", upstream.Message)
		assert.Equal(t, "expired", upstream.Body.(map[string]interface{})["detail"])
	})
}

func TestExtractRows(t *testing.T) {
	rows, err := extractRows([]interface{}{map[string]interface{}{"ID": "a"}, "junk"})
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"ID": "a"}, {}}, rows)

	rows, err = extractRows(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = extractRows(map[string]interface{}{"total": 0})
	assert.Error(t, err)
}

func TestTokenBucket_DisabledWhenRateIsZero(t *testing.T) {
	assert.Nil(t, newTokenBucket(0, 5))

	bucket := newTokenBucket(60, 1)
	require.NotNil(t, bucket)
	defer bucket.Stop()

	require.NoError(t, bucket.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bucket.Wait(ctx), context.DeadlineExceeded)
}
