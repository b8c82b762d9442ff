package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphfeed/graphfeed/internal/resolve"
	"github.com/graphfeed/graphfeed/internal/store/memstore"
)

func newTestHandler(opts ...Option) *Handler {
	return New(resolve.NewEngine(memstore.New()), opts...)
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, body)
	}
	return out
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{"query":"{ memberTypes { id discount } }"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	res := decodeResult(t, w.Body.Bytes())
	if res["errors"] != nil {
		t.Fatalf("errors: %v", res["errors"])
	}
	mts := res["data"].(map[string]any)["memberTypes"].([]any)
	if len(mts) != 2 {
		t.Fatalf("memberTypes = %v", mts)
	}
}

func TestGetQuery(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest("GET", "/graphql?query={memberTypes{id}}", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	res := decodeResult(t, w.Body.Bytes())
	if res["data"] == nil {
		t.Fatalf("no data: %s", w.Body.String())
	}
}

func TestBatchedRequests(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `[
		{"query":"{ memberTypes { id } }"},
		{"query":"{ users { id } }"}
	]`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("batch results = %v", out)
	}
	for i, res := range out {
		if res["data"] == nil {
			t.Fatalf("result %d has no data: %v", i, res)
		}
	}
}

func TestMutationOverHTTP(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{"query":"mutation { createUser(dto: { name: \"dave\", balance: 1.5 }) { id name } }"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	res := decodeResult(t, w.Body.Bytes())
	if res["errors"] != nil {
		t.Fatalf("errors: %v", res["errors"])
	}
	created := res["data"].(map[string]any)["createUser"].(map[string]any)
	if created["name"] != "dave" {
		t.Fatalf("createUser = %v", created)
	}
}

func TestMissingQuery(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestBodyTooLarge(t *testing.T) {
	h := newTestHandler(WithMaxBodyBytes(32))
	w := postJSON(t, h, `{"query":"{ memberTypes { id discount postsLimitPerMonth } }"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest("DELETE", "/graphql", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", w.Code)
	}
}

func TestUnsupportedContentType(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader("query { users }"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(WithCORS("*"))

	req := httptest.NewRequest("OPTIONS", "/graphql", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Headers") != "content-type" {
		t.Fatalf("allow-headers = %q", w.Header().Get("Access-Control-Allow-Headers"))
	}

	req = httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(`{"query":"{ users { id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin on POST = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	h := newTestHandler(WithCORS("http://allowed.example"))
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(`{"query":"{ users { id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://other.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin allowed")
	}
}

func TestGraphiQLServedOnHTMLAccept(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest("GET", "/graphql", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
}

func TestGraphiQLDisabled(t *testing.T) {
	h := newTestHandler(WithGraphiQL(false))
	req := httptest.NewRequest("GET", "/graphql", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}
