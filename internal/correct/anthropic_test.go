package correct

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewAnthropicClient("test-key", "test-model", "Fix grammar.", 5*time.Second)
	c.endpoint = srv.URL
	return c
}

func TestAnthropicCorrect(t *testing.T) {
	var gotReq anthropicRequest
	c := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "  The cat sat. \n"},
			},
		})
	})
	defer c.Close()

	got, err := c.Correct(context.Background(), "Teh cat sat.")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "The cat sat." {
		t.Errorf("Correct = %q, want postprocessed text", got)
	}
	if gotReq.System != "Fix grammar." {
		t.Errorf("system prompt = %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "Teh cat sat." {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
}

func TestAnthropicRetryableStatuses(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		c := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := c.Correct(context.Background(), "Teh cat sat.")
		var re *RetryableError
		if !errors.As(err, &re) {
			t.Errorf("status %d: error = %v, want RetryableError", status, err)
			continue
		}
		if re.StatusCode != status {
			t.Errorf("StatusCode = %d, want %d", re.StatusCode, status)
		}
		c.Close()
	}
}

func TestAnthropicClientError(t *testing.T) {
	c := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad"}}`))
	})
	defer c.Close()

	_, err := c.Correct(context.Background(), "Teh cat sat.")
	if err == nil {
		t.Fatal("expected error")
	}
	var re *RetryableError
	if errors.As(err, &re) {
		t.Errorf("4xx should not be retryable: %v", err)
	}
}

func TestAnthropicEmptyContent(t *testing.T) {
	c := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})
	defer c.Close()

	if _, err := c.Correct(context.Background(), "Teh cat sat."); err == nil {
		t.Error("expected error for empty content")
	}
}
