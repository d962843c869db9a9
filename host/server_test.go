package host

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/benoitkugler/okchart/chart"
	"github.com/benoitkugler/okchart/config"
	"github.com/benoitkugler/okchart/svgicon"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer() *Server {
	coord := NewCoordinator(new(Mount), chart.DefaultOptions())
	return NewServer(coord, svgicon.NewLoader(nil, svgicon.DefaultOptions), config.Default().Server)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %s", w.Body.String(), err)
	}
	return resp.Error.Code
}

const scenarioPayload = `{
	"rows": [
		["2024-01-01", "A", "10", ""],
		["2024-01-02", "A", 20, ""],
		["2024-01-01", "B", "5", ""]
	],
	"style": {"mainCompetitor": {"value": "A"}}
}`

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("unexpected response %d %s", w.Code, w.Body)
	}
}

func TestPostPayload(t *testing.T) {
	s := newTestServer()

	// nothing mounted yet
	w := do(t, s, http.MethodGet, "/chart.svg", "")
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NO_CHART" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body)
	}

	w = do(t, s, http.MethodPost, "/api/v1/payload", scenarioPayload)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body)
	}
	var delivery DeliveryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &delivery); err != nil {
		t.Fatal(err)
	}
	if delivery != (DeliveryResponse{Records: 3, Groups: 2}) {
		t.Errorf("unexpected delivery %v", delivery)
	}

	w = do(t, s, http.MethodGet, "/chart.svg", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected response %d %s", w.Code, w.Header())
	}
	if svg := w.Body.String(); strings.Count(svg, "<path") < 2 || !strings.Contains(svg, "main-competitor") {
		t.Errorf("unexpected svg %s", svg)
	}

	w = do(t, s, http.MethodGet, "/chart.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected response %d", w.Code)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 400 {
		t.Errorf("unexpected image size %v", b)
	}

	w = do(t, s, http.MethodGet, "/chart.pdf", "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("unexpected response %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/api/v1/groups", "")
	var groups []GroupInfo
	if err := json.Unmarshal(w.Body.Bytes(), &groups); err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0].EntityID != "A" || !groups[0].IsMain || groups[0].Records != 2 ||
		groups[0].LastDate != "2024-01-02" || groups[1].IsMain {
		t.Errorf("unexpected groups %v", groups)
	}
}

func TestPostPayloadErrors(t *testing.T) {
	s := newTestServer()
	if w := do(t, s, http.MethodPost, "/api/v1/payload", scenarioPayload); w.Code != http.StatusOK {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body)
	}

	for _, test := range []struct {
		body   string
		status int
		code   string
	}{
		{`not json`, http.StatusBadRequest, "INVALID_PAYLOAD"},
		{`{"style": {}}`, http.StatusBadRequest, "INVALID_PAYLOAD"},
		{`{"rows": []}`, http.StatusUnprocessableEntity, "NO_RECORDS"},
		{`{"rows": [["01/02/2024", "A", "1", ""]]}`, http.StatusUnprocessableEntity, "INVALID_DATE"},
	} {
		w := do(t, s, http.MethodPost, "/api/v1/payload", test.body)
		if w.Code != test.status || errorCode(t, w) != test.code {
			t.Errorf("%s: unexpected response %d %s", test.body, w.Code, w.Body)
		}
	}

	// a failed delivery leaves the mount empty
	if w := do(t, s, http.MethodGet, "/api/v1/groups", ""); w.Code != http.StatusNotFound {
		t.Errorf("unexpected response %d", w.Code)
	}
}

func TestPayloadTooLarge(t *testing.T) {
	options := config.Default().Server
	options.MaxPayloadBytes = 16
	s := NewServer(NewCoordinator(new(Mount), chart.DefaultOptions()), nil, options)

	w := do(t, s, http.MethodPost, "/api/v1/payload", scenarioPayload)
	if w.Code != http.StatusRequestEntityTooLarge || errorCode(t, w) != "PAYLOAD_TOO_LARGE" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("unexpected allowed origin %q", got)
	}
}

func TestOverrideStyle(t *testing.T) {
	coord := NewCoordinator(new(Mount), chart.DefaultOptions())
	coord.Override = &chart.StyleInput{MainCompetitor: chart.Some("B")}
	s := NewServer(coord, nil, config.Default().Server)

	// the payload selects A, the override wins
	if w := do(t, s, http.MethodPost, "/api/v1/payload", scenarioPayload); w.Code != http.StatusOK {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body)
	}
	var groups []GroupInfo
	if err := json.Unmarshal(do(t, s, http.MethodGet, "/api/v1/groups", "").Body.Bytes(), &groups); err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0].IsMain || !groups[1].IsMain {
		t.Errorf("expected B to be the main entity, got %v", groups)
	}
}
