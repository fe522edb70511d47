package predict

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindguard/backend/internal/service/classifier"
)

func setupRelay(baseURL string) *chi.Mux {
	client := classifier.NewHTTPClient(baseURL, 5*time.Second)
	handler := New(client)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postPredict(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPredictMissingBaseURL(t *testing.T) {
	r := setupRelay("")

	resp := postPredict(r, `{"text":"ok"}`)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	want := `{"error":"API_BASE_URL is not configured on the server"}`
	if got := strings.TrimSpace(resp.Body.String()); got != want {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestPredictMissingText(t *testing.T) {
	r := setupRelay("http://127.0.0.1:1")

	resp := postPredict(r, `{}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	want := `{"error":"Missing or invalid 'text' field"}`
	if got := strings.TrimSpace(resp.Body.String()); got != want {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestPredictNonStringText(t *testing.T) {
	r := setupRelay("http://127.0.0.1:1")

	resp := postPredict(r, `{"text":123}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPredictMalformedJSON(t *testing.T) {
	r := setupRelay("http://127.0.0.1:1")

	resp := postPredict(r, `{"text":`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPredictRelaysUpstreamBodyVerbatim(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("invalid upstream request: %v", err)
		}
		if payload["text"] != "feeling fine" {
			t.Errorf("unexpected forwarded text %q", payload["text"])
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"label":"Not Depressed","probability":0.91}`)
	}))
	defer upstream.Close()

	r := setupRelay(upstream.URL)

	resp := postPredict(r, `{"text":"feeling fine"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != `{"label":"Not Depressed","probability":0.91}` {
		t.Fatalf("expected verbatim upstream body, got %s", resp.Body.String())
	}
}

func TestPredictForwardsEmptyString(t *testing.T) {
	var forwarded string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		_ = json.Unmarshal(body, &payload)
		forwarded = payload["text"]
		io.WriteString(w, `{"label":"Not Depressed","probability":0.5}`)
	}))
	defer upstream.Close()

	r := setupRelay(upstream.URL)

	resp := postPredict(r, `{"text":""}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if forwarded != "" {
		t.Fatalf("expected empty text forwarded as-is, got %q", forwarded)
	}
}

func TestPredictWrapsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":"bad input"}`)
	}))
	defer upstream.Close()

	r := setupRelay(upstream.URL)

	resp := postPredict(r, `{"text":"ok"}`)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected relayed 422, got %d", resp.Code)
	}

	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Error != "Upstream API error" {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if string(body.Details) != `{"detail":"bad input"}` {
		t.Fatalf("unexpected details %s", body.Details)
	}
}

func TestPredictWrapsNonJSONUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>gateway timeout</html>")
	}))
	defer upstream.Close()

	r := setupRelay(upstream.URL)

	resp := postPredict(r, `{"text":"ok"}`)

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Error != "Upstream API error" {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if body.Details != "<html>gateway timeout</html>" {
		t.Fatalf("unexpected details %q", body.Details)
	}
}

func TestPredictTransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // leave a dead address behind

	r := setupRelay(upstream.URL)

	resp := postPredict(r, `{"text":"ok"}`)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	want := `{"error":"Internal server error"}`
	if got := strings.TrimSpace(resp.Body.String()); got != want {
		t.Fatalf("unexpected body %s", got)
	}
}
