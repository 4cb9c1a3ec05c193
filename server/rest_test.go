package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/intent"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_Ask(t *testing.T) {
	h := Router(newServer(t))

	rec := do(t, h, http.MethodPost, "/v1/ask", `{"query":"show me your cv"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	reply := decode[bot.Reply](t, rec)
	assert.Equal(t, bot.KindAnswer, reply.Kind)
	assert.Equal(t, "resume", reply.IntentID)

	rec = do(t, h, http.MethodPost, "/v1/ask", `{"query":"what is the weather today"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	reply = decode[bot.Reply](t, rec)
	assert.Equal(t, bot.KindFallback, reply.Kind)
	assert.Equal(t, bot.FallbackText, reply.Text)
	assert.Len(t, reply.Suggestions, 5)

	rec = do(t, h, http.MethodPost, "/v1/ask", `{"query":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/ask", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/ask", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_Intro(t *testing.T) {
	h := Router(newServer(t))

	rec := do(t, h, http.MethodGet, "/v1/intro", "")
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decode[bot.Reply](t, rec)
	assert.Equal(t, bot.KindIntro, reply.Kind)
	assert.Equal(t, bot.DefaultChips(), reply.Suggestions)
}

func TestRouter_Match(t *testing.T) {
	h := Router(newServer(t))

	rec := do(t, h, http.MethodPost, "/v1/match", `{"query":"WHAT ARE YOUR SKILLS?","explain":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[MatchResponse](t, rec)
	assert.True(t, resp.Matched)
	assert.Equal(t, "skills-stack", resp.IntentID)
	assert.InDelta(t, 0.595, resp.Score, 1e-9)
	require.Len(t, resp.Scores, 9)
	assert.Equal(t, "about-me", resp.Scores[0].IntentID)

	rec = do(t, h, http.MethodPost, "/v1/match", `{"query":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[MatchResponse](t, rec)
	assert.False(t, resp.Matched)
}

func TestRouter_Intents(t *testing.T) {
	h := Router(newServer(t))

	rec := do(t, h, http.MethodGet, "/v1/intents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Intents []intent.Description `json:"intents"`
	}](t, rec)
	require.Len(t, list.Intents, 9)
	assert.Equal(t, "about-me", list.Intents[0].ID)
	assert.Empty(t, list.Intents[0].Utterances)

	rec = do(t, h, http.MethodGet, "/v1/intents?detail=utterances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[struct {
		Intents []intent.Description `json:"intents"`
	}](t, rec)
	assert.NotEmpty(t, list.Intents[0].Utterances)

	rec = do(t, h, http.MethodGet, "/v1/intents?detail=verbose", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/intents/resume?detail=full", "")
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[intent.Description](t, rec)
	assert.Equal(t, "Resume", d.Title)
	assert.Contains(t, d.Answer, "PDF")

	rec = do(t, h, http.MethodGet, "/v1/intents/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Healthz(t *testing.T) {
	s := newServer(t)
	h := Router(s)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(9), body["intents"])
	assert.Equal(t, s.Bot().Catalog().Fingerprint(), body["fingerprint"])
}

func TestRouter_Metrics(t *testing.T) {
	h := Router(newServer(t))

	do(t, h, http.MethodPost, "/v1/ask", `{"query":"resume"}`)
	do(t, h, http.MethodPost, "/v1/ask", `{"query":"hello"}`)
	do(t, h, http.MethodPost, "/v1/ask", `{"query":""}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `faqintent_queries_total{outcome="answer"} 1`)
	assert.Contains(t, body, `faqintent_queries_total{outcome="fallback"} 1`)
	assert.Contains(t, body, `faqintent_queries_total{outcome="empty"} 1`)
	assert.Contains(t, body, `faqintent_intent_matches_total{intent="resume"} 1`)
	assert.Contains(t, body, `faqintent_match_score_count 1`)
}

func TestRouter_RPC(t *testing.T) {
	h := Router(newServer(t))

	rec := do(t, h, http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":7,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[Response](t, rec)
	require.Nil(t, resp.Error)
	assert.Equal(t, float64(7), resp.ID)

	rec = do(t, h, http.MethodPost, "/rpc", `garbage`)
	resp = decode[Response](t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParseError, resp.Error.Code)
}

func TestRouter_WrongMethod(t *testing.T) {
	h := Router(newServer(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/v1/ask"},
		{http.MethodGet, "/v1/match"},
		{http.MethodPost, "/v1/intro"},
		{http.MethodDelete, "/v1/intents"},
		{http.MethodPost, "/v1/intents/resume"},
		{http.MethodPut, "/rpc"},
		{http.MethodPut, "/healthz"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}

	rec := do(t, h, http.MethodGet, "/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	rec := do(t, ServeHTTP(newServer(t)), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeSSE(t *testing.T) {
	h := ServeSSE(newServer(t))

	rec := do(t, h, http.MethodPost, "/", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask","arguments":{"query":"resume"}}}`)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "event: message\ndata: "), body)
	payload := strings.TrimSuffix(strings.TrimPrefix(body, "event: message\ndata: "), "\n\n")

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Nil(t, resp.Error)
	assert.Equal(t, "resume", resp.Result.(map[string]any)["intentId"])

	rec = do(t, h, http.MethodPost, "/", `{`)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "event: error\n"))
}
