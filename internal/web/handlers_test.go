package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/chat-notes/internal/bot"
	"github.com/kuitang/chat-notes/internal/notes"
	"github.com/kuitang/chat-notes/internal/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := notes.NewStore(storage.NewMemory())
	return NewHandler(bot.NewEngine(store)).Router()
}

func postEvent(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) bot.Reply {
	t.Helper()
	var reply bot.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPostEvent_TextSavesQuickNote(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := postEvent(t, router, map[string]string{
		"user_id": "42", "type": "text", "text": "buy milk",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decodeReply(t, rec)
	assert.Contains(t, reply.Text, "Quick note saved")
	assert.NotEmpty(t, reply.Actions)
}

func TestPostEvent_CommandAndAction(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := postEvent(t, router, map[string]string{
		"user_id": "42", "type": "command", "name": "start",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decodeReply(t, rec)
	require.NotEmpty(t, reply.Actions)

	// Press the first menu button through the wire format.
	rec = postEvent(t, router, map[string]string{
		"user_id": "42", "type": "action", "token": reply.Actions[0].Token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reply = decodeReply(t, rec)
	assert.Contains(t, reply.Text, "create a new note")
}

func TestPostEvent_ValidationErrors(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"user_id": `, "invalid JSON body"},
		{"missing user", `{"type":"text","text":"x"}`, "user_id is required"},
		{"blank user", `{"user_id":"  ","type":"text","text":"x"}`, "user_id is required"},
		{"unknown type", `{"user_id":"1","type":"poke"}`, "unknown event type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewReader([]byte(tc.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
}

func TestPostEvent_OversizedBodyRejected(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	big := bytes.Repeat([]byte("a"), 65<<10)
	body := []byte(`{"user_id":"1","type":"text","text":"` + string(big) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
