package health

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBot struct{ up bool }

func (f *fakeBot) Connected() bool { return f.up }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthReport(t *testing.T) {
	bot := &fakeBot{}
	s := NewServer(":0", bot, zap.NewNop())
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.started = start
	s.now = func() time.Time { return start.Add(90*time.Second + 500*time.Millisecond) }

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var got Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got.Status)
	assert.InDelta(t, 90.5, got.Uptime, 0.001)
	assert.Equal(t, "2026-01-02T03:05:35.500Z", got.Timestamp)
	assert.Equal(t, StatusDisconnected, got.BotStatus)

	bot.up = true
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/health").Body.Bytes(), &got))
	assert.Equal(t, StatusConnected, got.BotStatus)
}

func TestHealthWithoutBot(t *testing.T) {
	s := NewServer(":0", nil, zap.NewNop())
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/health").Body.Bytes(), &got))
	assert.Equal(t, StatusDisconnected, got["bot_status"])
	assert.ElementsMatch(t, []string{"status", "uptime", "timestamp", "bot_status"}, keys(got))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRootLiveness(t *testing.T) {
	s := NewServer(":0", nil, zap.NewNop())
	rec := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Discord Invisible Bot is running! 👻", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/nope").Code)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(ln.Addr().String(), nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "running")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewServer(ln.Addr().String(), nil, zap.NewNop())
	assert.Error(t, s.Run(context.Background()))
}
