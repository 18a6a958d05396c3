package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitieu/internal/chat"
	"chitieu/internal/middleware/ratelimit"
	"chitieu/internal/report"
)

type fakeChat struct {
	mu       sync.Mutex
	sessions []string
	reply    chat.Reply
	err      error
}

func (f *fakeChat) Handle(ctx context.Context, sessionID, userID, message string) (chat.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sessionID)
	if f.err != nil {
		return chat.Reply{}, f.err
	}
	return f.reply, nil
}

type fakeReports struct {
	year, month int
	err         error
}

func (f *fakeReports) Build(ctx context.Context, userID string, year, month int, now time.Time) (report.Report, error) {
	f.year, f.month = year, month
	if f.err != nil {
		return report.Report{}, f.err
	}
	return report.Report{Year: year, Month: month, Empty: true}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Chat == nil {
		deps.Chat = &fakeChat{reply: chat.Reply{Text: "ok", State: chat.StateAwaitingConfirmation}}
	}
	if deps.Reports == nil {
		deps.Reports = &fakeReports{}
	}
	if deps.DB == nil {
		deps.DB = fakePinger{}
	}
	deps.UserID = "demo-user"
	deps.SessionTTL = 30 * time.Minute
	deps.Now = func() time.Time { return fixedNow }
	s := NewServer(":0", deps)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func postChat(s *Server, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	return rr
}

func TestChatReturnsReplyAndSetsSessionCookie(t *testing.T) {
	s := newTestServer(t, Deps{})

	rr := postChat(s, `{"message":"ăn phở 50k"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["reply"])
	assert.Equal(t, "awaiting_confirmation", body["state"])

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, sessionCookie, c.Name)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 1800, c.MaxAge)
}

func TestChatReusesExistingSession(t *testing.T) {
	fc := &fakeChat{reply: chat.Reply{Text: "ok", State: chat.StateSaved}}
	s := newTestServer(t, Deps{Chat: fc})

	first := postChat(s, `{"message":"ăn phở 50k"}`)
	require.Equal(t, http.StatusOK, first.Code)
	cookie := first.Result().Cookies()[0]

	second := postChat(s, `{"message":"ok"}`, cookie)
	require.Equal(t, http.StatusOK, second.Code)

	require.Len(t, fc.sessions, 2)
	assert.Equal(t, fc.sessions[0], fc.sessions[1])
}

func TestChatReplacesMalformedSessionCookie(t *testing.T) {
	fc := &fakeChat{reply: chat.Reply{Text: "ok", State: chat.StateIdle}}
	s := newTestServer(t, Deps{Chat: fc})

	rr := postChat(s, `{"message":"hi"}`, &http.Cookie{Name: sessionCookie, Value: "../../etc"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, fc.sessions, 1)
	assert.NotEqual(t, "../../etc", fc.sessions[0])
}

func TestChatRejectsMissingMessage(t *testing.T) {
	s := newTestServer(t, Deps{})

	for _, body := range []string{``, `{}`, `{"message":"   "}`, `not json`} {
		rr := postChat(s, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
		assert.JSONEq(t, `{"error":"Message is required"}`, rr.Body.String())
	}
}

func TestChatInternalErrorIs500(t *testing.T) {
	s := newTestServer(t, Deps{Chat: &fakeChat{err: errors.New("boom")}})

	rr := postChat(s, `{"message":"ăn phở 50k"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

func TestChatIsRateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 2, CleanupInterval: time.Hour})
	s := newTestServer(t, Deps{Limiter: limiter})

	assert.Equal(t, http.StatusOK, postChat(s, `{"message":"a"}`).Code)
	assert.Equal(t, http.StatusOK, postChat(s, `{"message":"b"}`).Code)
	rr := postChat(s, `{"message":"c"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestReportDefaultsToCurrentMonth(t *testing.T) {
	fr := &fakeReports{}
	s := newTestServer(t, Deps{Reports: fr})

	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2025, fr.year)
	assert.Equal(t, 3, fr.month)

	var body struct {
		Report  map[string]any `json:"report"`
		Summary string         `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body.Report["month"])
	assert.Contains(t, body.Summary, "THÁNG 3/2025")
}

func TestReportQueryParams(t *testing.T) {
	fr := &fakeReports{}
	s := newTestServer(t, Deps{Reports: fr})

	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report?month=1&year=2024", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2024, fr.year)
	assert.Equal(t, 1, fr.month)

	for _, q := range []string{"month=13", "month=0", "year=abc", "month=x"} {
		rr := httptest.NewRecorder()
		s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestReportFailureIs500(t *testing.T) {
	s := newTestServer(t, Deps{Reports: &fakeReports{err: errors.New("db down")}})

	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHealthReportsDatabaseState(t *testing.T) {
	s := newTestServer(t, Deps{})
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","timestamp":"2025-03-15T10:00:00Z","database":"connected"}`, rr.Body.String())

	down := newTestServer(t, Deps{DB: fakePinger{err: errors.New("closed")}})
	rr = httptest.NewRecorder()
	down.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `"database":"disconnected"`)
}

func TestIndexReadyAndHeaders(t *testing.T) {
	s := newTestServer(t, Deps{})

	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Trợ lý chi tiêu")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_"))

	rr = httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/chat.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.7:1234", "", "203.0.113.7"},
		{"untrusted peer ignores header", "203.0.113.7:1234", "198.51.100.1", "203.0.113.7"},
		{"trusted proxy forwards", "10.0.0.2:80", "198.51.100.1, 10.0.0.2", "198.51.100.1"},
		{"trusted proxy bad header", "127.0.0.1:80", "garbage", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, extractClientIP(r))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "ăn phở 50k", sanitizeInput("  ăn\x00 phở 50k\x07 "))
	assert.Equal(t, "", sanitizeInput(" \t "))
}
