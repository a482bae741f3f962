package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"scope-chat/internal/domain"
)

func TestHTTPClientComplete_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","choices":[{"message":{"role":"assistant","content":"hola"}}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", "sk-test", "gpt-test", zap.NewNop())
	msgs := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "I need help"},
		{Role: domain.RoleAssistant, Content: "sure"},
		{Role: domain.RoleUser, Content: "thanks"},
	}
	res, err := client.Complete(context.Background(), msgs, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "hola" {
		t.Fatalf("expected content hola, got %q", res.Content)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["model"] != "gpt-test" || gotBody["temperature"] != 0.3 || gotBody["stream"] != false {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if sent, ok := gotBody["messages"].([]any); !ok || len(sent) != 3 {
		t.Fatalf("expected full context sent, got %v", gotBody["messages"])
	}

	var raw map[string]any
	if err := json.Unmarshal(res.Raw, &raw); err != nil || raw["id"] != "cmpl-1" {
		t.Fatalf("expected raw payload preserved, got %s", string(res.Raw))
	}
}

func TestHTTPClientComplete_MissingFieldsDefaultToEmpty(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"choices":[]}`,
		`{"choices":[{}]}`,
		`{"choices":[{"message":{}}]}`,
		`{"choices":[{"message":{"content":null}}]}`,
	}
	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(p))
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, "k", "m", nil)
			res, err := client.Complete(context.Background(), nil, 0.7)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Content != "" {
				t.Fatalf("expected empty content, got %q", res.Content)
			}
		})
	}
}

func TestHTTPClientComplete_UpstreamErrorPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "k", "m", zap.NewNop())
	_, err := client.Complete(context.Background(), nil, 0.7)

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", upErr.StatusCode)
	}
	if string(upErr.Body) != `{"error":{"message":"rate limited"}}` {
		t.Fatalf("body must be passed verbatim, got %s", string(upErr.Body))
	}
	if upErr.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", upErr.ContentType)
	}
}

func TestHTTPClientComplete_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "k", "m", zap.NewNop())
	if _, err := client.Complete(context.Background(), nil, 0.7); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
