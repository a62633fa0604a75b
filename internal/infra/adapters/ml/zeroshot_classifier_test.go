package ml

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smart-support-router/internal/config"
	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
)

func newTestClassifier(t *testing.T, handler http.HandlerFunc) *ZeroShotClassifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewZeroShotClassifier(&config.MLConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewZeroShotClassifier: %v", err)
	}
	return c
}

func completionResponse(content string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return b
}

func TestZeroShot_Classify(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		_, _ = w.Write(completionResponse(`{"category": "Billing", "urgency": 0.92}`))
	})

	category, score, err := c.Classify(context.Background(), "charge me twice, fix ASAP")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if category != model.CategoryBilling || score != 0.92 {
		t.Fatalf("unexpected verdict: %s %v", category, score)
	}
}

func TestZeroShot_ToleratesCodeFences(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(completionResponse("```json\n{\"category\": \"Legal\", \"urgency\": 0.3}\n```"))
	})

	category, _, err := c.Classify(context.Background(), "contract question")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if category != model.CategoryLegal {
		t.Fatalf("expected Legal, got %s", category)
	}
}

func TestZeroShot_MalformedOutput(t *testing.T) {
	t.Parallel()

	cases := []string{
		"I think this is a billing issue.",
		`{"category": "Spam", "urgency": 0.5}`,
		`{"category": "Billing", "urgency": 3}`,
	}
	for _, content := range cases {
		body := completionResponse(content)
		c := newTestClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(body)
		})
		if _, _, err := c.Classify(context.Background(), "x"); !errors.Is(err, domain.ErrClassificationFailed) {
			t.Errorf("content %q: expected ErrClassificationFailed, got %v", content, err)
		}
	}
}

func TestZeroShot_ServerError(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, _, err := c.Classify(context.Background(), "x"); !errors.Is(err, domain.ErrClassificationFailed) {
		t.Fatalf("expected ErrClassificationFailed on http 502, got %v", err)
	}
}
