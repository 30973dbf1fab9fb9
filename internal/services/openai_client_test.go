package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nadavbr/lessonforge-backend/internal/logger"
)

func newTestCompletionClient(t *testing.T, baseURL string, retries int, timeout, minBackoff, maxBackoff time.Duration) *openAIClient {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return &openAIClient{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     "test-key",
		model:      "gpt-4o-mini",
		maxTokens:  128,
		timeout:    timeout,
		maxRetries: retries,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		httpClient: &http.Client{},
	}
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestGenerateLessonContentEmptyPromptSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty prompt")
	}))
	defer srv.Close()

	c := newTestCompletionClient(t, srv.URL, 2, time.Second, time.Millisecond, time.Millisecond)
	got, err := c.GenerateLessonContent(context.Background(), "   \n\t ")
	if err != nil {
		t.Fatalf("GenerateLessonContent: %v", err)
	}
	if got != noPromptSentinel {
		t.Fatalf("content: want=%q got=%q", noPromptSentinel, got)
	}
}

func TestGenerateLessonContentRetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(completionBody("# Pointers in Go")))
		}
	}))
	defer srv.Close()

	minBackoff := 10 * time.Millisecond
	c := newTestCompletionClient(t, srv.URL, 2, 5*time.Second, minBackoff, 25*time.Millisecond)

	start := time.Now()
	got, err := c.GenerateLessonContent(context.Background(), "pointers in go")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("GenerateLessonContent: %v", err)
	}
	if got != "# Pointers in Go" {
		t.Fatalf("content: got=%q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("calls: want=3 got=%d", n)
	}
	// two backoff sleeps: min, then min doubled
	if want := minBackoff + 2*minBackoff; elapsed < want {
		t.Fatalf("elapsed: want>=%s got=%s", want, elapsed)
	}
}

func TestGenerateLessonContentBackoffClampedAtMax(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	c := newTestCompletionClient(t, srv.URL, 3, 5*time.Second, 10*time.Millisecond, 15*time.Millisecond)

	start := time.Now()
	if _, err := c.GenerateLessonContent(context.Background(), "slices"); err != nil {
		t.Fatalf("GenerateLessonContent: %v", err)
	}
	elapsed := time.Since(start)

	if n := atomic.LoadInt32(&calls); n != 4 {
		t.Fatalf("calls: want=4 got=%d", n)
	}
	// sleeps are 10ms, then clamp(20)=15ms, then clamp(30)=15ms
	if want := 40 * time.Millisecond; elapsed < want {
		t.Fatalf("elapsed: want>=%s got=%s", want, elapsed)
	}
}

func TestGenerateLessonContentPermanentFailureNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request"}}`))
	}))
	defer srv.Close()

	c := newTestCompletionClient(t, srv.URL, 2, time.Second, time.Millisecond, 2*time.Millisecond)
	_, err := c.GenerateLessonContent(context.Background(), "maps")
	if err == nil {
		t.Fatal("expected error")
	}
	var httpErr *completionHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("error: want http 400, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls: want=1 got=%d", n)
	}
}

func TestGenerateLessonContentEmptyContentIsTerminal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(completionBody("   ")))
	}))
	defer srv.Close()

	c := newTestCompletionClient(t, srv.URL, 2, time.Second, time.Millisecond, 2*time.Millisecond)
	_, err := c.GenerateLessonContent(context.Background(), "structs")
	if !errors.Is(err, errEmptyCompletion) {
		t.Fatalf("error: want errEmptyCompletion, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls: want=1 got=%d", n)
	}
}

func TestGenerateLessonContentTimeoutEndsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(completionBody("too late")))
	}))
	defer srv.Close()

	c := newTestCompletionClient(t, srv.URL, 2, 50*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond)

	start := time.Now()
	_, err := c.GenerateLessonContent(context.Background(), "channels")
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error: want deadline exceeded, got %v", err)
	}
	// one shared clock across attempts; no retries once it elapses
	if elapsed > 250*time.Millisecond {
		t.Fatalf("elapsed: want<250ms got=%s", elapsed)
	}
}

func TestGenerateLessonJSONRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization: got %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format: got %+v", req.ResponseFormat)
		}
		if req.Temperature != 0.2 {
			t.Errorf("temperature: got %v", req.Temperature)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Return ONLY JSON") {
			t.Errorf("messages: got %+v", req.Messages)
		}

		_, _ = w.Write([]byte(completionBody(`{"title":"Slices"}`)))
	}))
	defer srv.Close()

	c := newTestCompletionClient(t, srv.URL, 0, time.Second, time.Millisecond, 2*time.Millisecond)
	got, err := c.GenerateLessonJSON(context.Background(), "slices in go")
	if err != nil {
		t.Fatalf("GenerateLessonJSON: %v", err)
	}
	// raw JSON text comes back unparsed
	if got != `{"title":"Slices"}` {
		t.Fatalf("content: got=%q", got)
	}
}
