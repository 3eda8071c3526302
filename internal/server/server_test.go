package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/cache"
	"github.com/matzehuels/structio/pkg/codec"
	sio "github.com/matzehuels/structio/pkg/io"
	"github.com/matzehuels/structio/pkg/observability"
	"github.com/matzehuels/structio/pkg/pipeline"
	"github.com/matzehuels/structio/pkg/store"
)

type testEnv struct {
	handler http.Handler
	reg     *prometheus.Registry
}

func newTestEnv(t *testing.T, maxBody int64) *testEnv {
	t.Helper()
	logger := log.New(io.Discard)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	reg := prometheus.NewRegistry()
	srv := New(pipeline.NewRunner(c, nil, nil, logger), st, Config{MaxBody: maxBody, Gatherer: reg, Logger: logger})
	return &testEnv{handler: srv.Handler(), reg: reg}
}

func (e *testEnv) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func snakeBytes(t *testing.T, version uint8) []byte {
	t.Helper()
	data, err := codec.Marshal(building.Snake(10, 5), version)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q: %v", rec.Body.String(), err)
	}
	return body.Error.Code
}

func TestHealthzAndRequestID(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q: %v", rec.Header().Get(RequestIDHeader), err)
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("malformed request id was echoed")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	env := newTestEnv(t, 0)

	var doc bytes.Buffer
	if err := sio.WriteJSON(building.Vehicle(100), &doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	for _, compress := range []string{"false", "true"} {
		t.Run("compress="+compress, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/encode?version=6&compress="+compress, doc.Bytes())
			if rec.Code != http.StatusOK {
				t.Fatalf("encode status = %d: %s", rec.Code, rec.Body)
			}
			if got := sio.IsCompressed(rec.Body.Bytes()); got != (compress == "true") {
				t.Errorf("compressed = %v", got)
			}

			rec = env.do(t, http.MethodPost, "/v1/decode", rec.Body.Bytes())
			if rec.Code != http.StatusOK {
				t.Fatalf("decode status = %d: %s", rec.Code, rec.Body)
			}
			if v := rec.Header().Get("X-Structure-Version"); v != "6" {
				t.Errorf("version header = %q", v)
			}
			b, err := sio.ReadJSON(rec.Body)
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if len(b.Blocks) != len(building.Vehicle(100).Blocks) {
				t.Errorf("blocks = %d", len(b.Blocks))
			}
		})
	}
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t, 0)
	valid := snakeBytes(t, 6)

	tests := []struct {
		name   string
		method string
		target string
		body   []byte
		status int
		code   string
	}{
		{"unknown version", http.MethodPost, "/v1/decode", []byte{99}, http.StatusBadRequest, "UNSUPPORTED_VERSION"},
		{"trailing bytes", http.MethodPost, "/v1/decode", append(append([]byte{}, valid...), 0), http.StatusBadRequest, "INVALID_DATA"},
		{"empty body", http.MethodPost, "/v1/inspect", []byte{}, http.StatusBadRequest, "INVALID_INPUT"},
		{"encode version out of range", http.MethodPost, "/v1/encode?version=9", []byte(`{}`), http.StatusBadRequest, "UNSUPPORTED_VERSION"},
		{"encode version not a number", http.MethodPost, "/v1/encode?version=abc", []byte(`{}`), http.StatusBadRequest, "INVALID_INPUT"},
		{"encode bad json", http.MethodPost, "/v1/encode", []byte(`{`), http.StatusBadRequest, "INVALID_FORMAT"},
		{"graph bad format", http.MethodPost, "/v1/graph?format=png", valid, http.StatusBadRequest, "INVALID_FORMAT"},
		{"structure not found", http.MethodGet, "/v1/structures/" + uuid.NewString(), nil, http.StatusNotFound, "NOT_FOUND"},
		{"structure bad id", http.MethodGet, "/v1/structures/NOPE", nil, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	env := newTestEnv(t, 16)
	rec := env.do(t, http.MethodPost, "/v1/decode", snakeBytes(t, 6))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestInspectCaches(t *testing.T) {
	env := newTestEnv(t, 0)
	data := snakeBytes(t, 4)

	for i, want := range []string{"miss", "hit"} {
		rec := env.do(t, http.MethodPost, "/v1/inspect", data)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		if got := rec.Header().Get(CacheHeader); got != want {
			t.Errorf("request %d: %s = %q, want %q", i, CacheHeader, got, want)
		}
		var sum pipeline.Summary
		if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
			t.Fatal(err)
		}
		if sum.Version != 4 || sum.Blocks != 10 || sum.Roots != 1 {
			t.Errorf("summary = %+v", sum)
		}
	}
}

func TestGraphDOT(t *testing.T) {
	env := newTestEnv(t, 0)
	rec := env.do(t, http.MethodPost, "/v1/graph?format=dot", snakeBytes(t, 6))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != contentTypeDOT {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "digraph") {
		t.Errorf("body is not DOT: %q", rec.Body.String())
	}
}

func TestTypes(t *testing.T) {
	env := newTestEnv(t, 0)
	rec := env.do(t, http.MethodGet, "/v1/types", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Fingerprint string     `json:"fingerprint"`
		Types       []typeInfo `json:"types"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Fingerprint) != 16 || len(body.Types) == 0 {
		t.Errorf("fingerprint %q, %d types", body.Fingerprint, len(body.Types))
	}
}

func TestStructures(t *testing.T) {
	env := newTestEnv(t, 0)
	data := snakeBytes(t, 5)

	rec := env.do(t, http.MethodPost, "/v1/structures", data)
	if rec.Code != http.StatusCreated {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body)
	}
	var r store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatal(err)
	}
	if r.Version != 5 || r.Blocks != 10 || r.Size != len(data) {
		t.Errorf("record = %+v", r)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/structures/"+r.ID {
		t.Errorf("location = %q", loc)
	}

	rec = env.do(t, http.MethodGet, "/v1/structures/"+r.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), data) {
		t.Error("archived bytes differ")
	}

	rec = env.do(t, http.MethodGet, "/v1/structures/"+r.ID+"?format=json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get json status = %d", rec.Code)
	}
	b, err := sio.ReadJSON(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Blocks) != 10 {
		t.Errorf("blocks = %d", len(b.Blocks))
	}

	rec = env.do(t, http.MethodPost, "/v1/structures", []byte{1, 2, 3})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid structure archived: status %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t, 0)
	NewMetrics(env.reg).Install()
	t.Cleanup(observability.Reset)

	env.do(t, http.MethodPost, "/v1/decode", snakeBytes(t, 6))
	env.do(t, http.MethodPost, "/v1/decode", []byte{99})

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := rec.Body.String()
	for _, want := range []string{
		`structio_codec_operations_total{op="decode",result="ok",version="6"} 1`,
		`structio_codec_operations_total{op="decode",result="UNSUPPORTED_VERSION",version="0"} 1`,
		`structio_http_request_duration_seconds_count{method="POST",route="/v1/decode",status="200"} 1`,
		`structio_http_request_duration_seconds_count{method="POST",route="/v1/decode",status="400"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	logger := log.New(io.Discard)
	srv := New(pipeline.NewRunner(nil, nil, nil, logger), nil, Config{Gatherer: prometheus.NewRegistry(), Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
