package conversation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mindguard/backend/internal/analysis/reply"
	conversationHandler "github.com/mindguard/backend/internal/handler/conversation"
	"github.com/mindguard/backend/internal/model/chat"
	"github.com/mindguard/backend/internal/service/classifier"
	"github.com/mindguard/backend/internal/service/conversation"
)

type stubClassifier struct {
	prediction classifier.Prediction
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (classifier.Prediction, error) {
	return s.prediction, nil
}

func setupRouter(prediction classifier.Prediction) *chi.Mux {
	store := conversation.NewStore(&stubClassifier{prediction: prediction})
	handler := conversationHandler.New(store)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestSnapshotReturnsGreeting(t *testing.T) {
	r := setupRouter(classifier.Prediction{})

	req := httptest.NewRequest(http.MethodGet, "/conversation", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var snapshot chat.Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(snapshot.Messages) != 1 || snapshot.Messages[0].Content != reply.Greeting {
		t.Fatalf("expected seeded greeting, got %+v", snapshot.Messages)
	}
	if snapshot.IsResponding {
		t.Fatal("expected isResponding false")
	}
}

func TestSubmitReturnsReply(t *testing.T) {
	r := setupRouter(classifier.Prediction{Label: "Depressed", Probability: 0.8})

	payload := []byte(`{"text":"I feel sad"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversation/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Reply chat.Message `json:"reply"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Reply.Role != chat.RoleAssistant {
		t.Fatalf("expected assistant reply, got %s", body.Reply.Role)
	}
	if body.Reply.Content != reply.FromPrediction("Depressed", 0.8) {
		t.Fatalf("unexpected reply %q", body.Reply.Content)
	}
}

func TestSubmitWhitespaceRejected(t *testing.T) {
	r := setupRouter(classifier.Prediction{})

	payload := []byte(`{"text":"   "}`)
	req := httptest.NewRequest(http.MethodPost, "/conversation/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitInvalidBodyRejected(t *testing.T) {
	r := setupRouter(classifier.Prediction{})

	req := httptest.NewRequest(http.MethodPost, "/conversation/messages", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
