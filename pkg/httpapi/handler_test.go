package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantops/alertfeed/pkg/alert"
	"github.com/plantops/alertfeed/pkg/push"
)

func notifID(i int) string {
	return fmt.Sprintf("0190a1b2-0000-7000-8000-%012d", i)
}

func newTestServer(t *testing.T, channel push.Channel) (*httptest.Server, *alert.MemoryStore) {
	t.Helper()
	store := alert.NewMemoryStore()
	h := NewHandler(store, channel, WithPageSize(6))
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func seed(t *testing.T, store alert.Store, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, store.Create(context.Background(), alert.Notification{
			ID:       notifID(i),
			OwnerID:  "op-1",
			Device:   "boiler-7",
			Metric:   "temperature",
			Severity: alert.SeverityWarning,
		}))
	}
}

func doRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	req.Header.Set(OperatorHeader, "op-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandlerList(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seed(t, store, 14)

	resp := doRequest(t, http.MethodGet, srv.URL+"/notifications?scope=mine&filter=unread")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var page struct {
		Items      []alert.Notification `json:"items"`
		NextCursor string               `json:"next_cursor"`
		HasMore    bool                 `json:"has_more"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Items, 6)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextCursor)
	assert.Equal(t, notifID(14), page.Items[0].ID)

	// Follow the cursor.
	resp = doRequest(t, http.MethodGet,
		srv.URL+"/notifications?scope=mine&filter=unread&cursor="+page.NextCursor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Items, 6)
	assert.Equal(t, notifID(8), page.Items[0].ID)
}

func TestHandlerListUnknownScopeFallsBack(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seed(t, store, 2)

	resp := doRequest(t, http.MethodGet, srv.URL+"/notifications?scope=bogus&filter=bogus")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Items []alert.Notification `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Items, 2)
}

func TestHandlerListBadCursor(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seed(t, store, 2)

	resp := doRequest(t, http.MethodGet, srv.URL+"/notifications?cursor=garbage!!")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A cursor minted for another scope is rejected, not silently reused.
	mismatched := alert.EncodeCursor(alert.ScopeMine, alert.FilterUnread, notifID(2))
	resp = doRequest(t, http.MethodGet, srv.URL+"/notifications?cursor="+string(mismatched))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerUnreadCountAndMarkRead(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, nil)
	seed(t, store, 3)

	count := func() int {
		resp := doRequest(t, http.MethodGet, srv.URL+"/notifications/unread-count")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]int
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body["count"]
	}

	require.Equal(t, 3, count())

	resp := doRequest(t, http.MethodPost, srv.URL+"/notifications/"+notifID(1)+"/read")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 2, count())

	resp = doRequest(t, http.MethodPost, srv.URL+"/notifications/read-all")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, count())
}

func TestHandlerStream(t *testing.T) {
	t.Parallel()

	channel := push.NewMemoryChannel()
	t.Cleanup(func() { _ = channel.Close() })
	srv, _ := newTestServer(t, channel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The subscription is registered once the handler has sent headers, but
	// give the broadcast a retry loop to dodge the remaining race.
	n := alert.Notification{ID: notifID(1), OwnerID: "op-1", Severity: alert.SeverityCritical}
	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
				return
			}
		}
	}()

	var event string
	require.Eventually(t, func() bool {
		if err := channel.Broadcast(ctx, n); err != nil {
			return false
		}
		select {
		case event = <-lines:
			return true
		default:
			return false
		}
	}, 2*time.Second, 50*time.Millisecond)

	var got alert.Notification
	require.NoError(t, json.Unmarshal([]byte(event), &got))
	assert.Equal(t, notifID(1), got.ID)
	assert.Equal(t, alert.SeverityCritical, got.Severity)
}

func TestHandlerStreamDisabledWithoutChannel(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	resp := doRequest(t, http.MethodGet, srv.URL+"/notifications/stream")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
