package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/benchdef/pkg/framework"
	"github.com/matzehuels/benchdef/pkg/pipeline"
	"github.com/matzehuels/benchdef/pkg/store"
)

const testDefs = `---

__base__:
  version: stable

constantpredictor:
  version: '0.1'

RandomForest:
  extends: __base__
  version: '1.4'
  params:
    n_estimators: 2000
`

func newTestServer(t *testing.T, defs string, st store.Store) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "frameworks.yaml")
	if err := os.WriteFile(path, []byte(defs), 0o644); err != nil {
		t.Fatalf("write definitions: %v", err)
	}

	quiet := log.New(io.Discard)
	srv, err := New(Config{}, Deps{
		Runner:  pipeline.NewRunner(nil, nil, quiet),
		Options: pipeline.Options{Paths: []string{path}, Logger: quiet},
		Store:   st,
		Logger:  quiet,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	decodeBody(t, rec, &resp)
	return resp.Error.Code
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
	if body["version"] == "" {
		t.Error("version field should not be empty")
	}
}

func TestListFrameworks(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp catalogResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	if resp.Hash == "" {
		t.Error("hash should not be empty")
	}

	names := make([]string, 0, len(resp.Frameworks))
	for _, def := range resp.Frameworks {
		names = append(names, def.Name)
	}
	got := strings.Join(names, ",")
	if got != "RandomForest,constantpredictor" {
		t.Errorf("frameworks = %s, want RandomForest,constantpredictor", got)
	}
}

func TestListFrameworksETag(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	first := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks", nil)
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("response should carry an ETag")
	}

	second := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks",
		map[string]string{"If-None-Match": etag})
	if second.Code != http.StatusNotModified {
		t.Errorf("status = %d, want %d", second.Code, http.StatusNotModified)
	}
	if second.Body.Len() != 0 {
		t.Errorf("304 body should be empty, got %q", second.Body)
	}
}

func TestGetFramework(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	// Lookup folds case.
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks/randomforest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body)
	}

	var def framework.Definition
	decodeBody(t, rec, &def)
	if def.Name != "RandomForest" {
		t.Errorf("name = %q, want %q", def.Name, "RandomForest")
	}
	if def.Version != "1.4" {
		t.Errorf("version = %q, want %q", def.Version, "1.4")
	}
	if def.DockerImage.Tag != "1.4" {
		t.Errorf("docker tag = %q, want %q", def.DockerImage.Tag, "1.4")
	}
}

func TestGetFrameworkImage(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks/RandomForest/image", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body)
	}

	var img struct {
		Author string `json:"author"`
		Image  string `json:"image"`
		Tag    string `json:"tag"`
		Ref    string `json:"ref"`
	}
	decodeBody(t, rec, &img)
	if img.Ref != "automlbenchmark/randomforest:1.4" {
		t.Errorf("ref = %q, want automlbenchmark/randomforest:1.4", img.Ref)
	}
	if img.Image != "randomforest" {
		t.Errorf("image = %q, want randomforest", img.Image)
	}
}

func TestGetFrameworkNotFound(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks/nosuch", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if code := errorCode(t, rec); code != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", code)
	}
}

func TestResolveErrorStatus(t *testing.T) {
	srv := newTestServer(t, "noversion:\n  project: https://example.com\n", nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusUnprocessableEntity, rec.Body)
	}
	if code := errorCode(t, rec); code != "MISSING_VERSION" {
		t.Errorf("error code = %q, want MISSING_VERSION", code)
	}
}

func TestLineageDOT(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/lineage?format=dot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("content type = %q, want text/vnd.graphviz", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("digraph extends")) {
		t.Error("body should contain the DOT graph")
	}

	// Conditional request with the diagram's entity tag.
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("diagram response should carry an ETag")
	}
	second := doRequest(t, srv, http.MethodGet, "/api/v1/lineage?format=dot",
		map[string]string{"If-None-Match": etag})
	if second.Code != http.StatusNotModified {
		t.Errorf("status = %d, want %d", second.Code, http.StatusNotModified)
	}
}

func TestLineageBadFormat(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/lineage?format=gif", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := errorCode(t, rec); code != "INVALID_FORMAT" {
		t.Errorf("error code = %q, want INVALID_FORMAT", code)
	}
}

func TestFrozenCatalog(t *testing.T) {
	doc, err := framework.ParseDocument([]byte(testDefs))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	catalog, err := framework.Resolve(doc, framework.Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	srv, err := New(Config{}, Deps{Frozen: catalog, Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/frameworks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp catalogResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}

	// A frozen catalog has no raw entries to draw.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/lineage", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("lineage status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(Config{}, Deps{}); err == nil {
		t.Error("New without runner or catalog should fail")
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	srv := newTestServer(t, testDefs, store.NewMemoryStore())

	// Publish the current catalog.
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/snapshots", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("publish status = %d, want %d, body %s", rec.Code, http.StatusCreated, rec.Body)
	}
	var info store.Info
	decodeBody(t, rec, &info)
	if info.ID == "" {
		t.Fatal("published snapshot should have an id")
	}
	if info.Count != 2 {
		t.Errorf("count = %d, want 2", info.Count)
	}

	// List includes it.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/snapshots", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}
	var list snapshotListResponse
	decodeBody(t, rec, &list)
	if list.Count != 1 || len(list.Snapshots) != 1 {
		t.Fatalf("list count = %d (%d entries), want 1", list.Count, len(list.Snapshots))
	}
	if list.Snapshots[0].ID != info.ID {
		t.Errorf("listed id = %q, want %q", list.Snapshots[0].ID, info.ID)
	}

	// Fetch by id and latest.
	for _, target := range []string{"/api/v1/snapshots/" + info.ID, "/api/v1/snapshots/latest"} {
		rec = doRequest(t, srv, http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", target, rec.Code, http.StatusOK)
		}
		var snap store.Snapshot
		decodeBody(t, rec, &snap)
		if snap.ID != info.ID {
			t.Errorf("GET %s id = %q, want %q", target, snap.ID, info.ID)
		}
		if len(snap.Definitions) != 2 {
			t.Errorf("GET %s definitions = %d, want 2", target, len(snap.Definitions))
		}
	}

	// Delete, then confirm it is gone.
	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/snapshots/"+info.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/snapshots/"+info.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if code := errorCode(t, rec); code != "SNAPSHOT_NOT_FOUND" {
		t.Errorf("error code = %q, want SNAPSHOT_NOT_FOUND", code)
	}
}

func TestSnapshotRoutesDisabledWithoutStore(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/snapshots", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSnapshotListBadLimit(t *testing.T) {
	srv := newTestServer(t, testDefs, store.NewMemoryStore())

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/snapshots?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, testDefs, nil)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry a generated request id")
	}

	rec = doRequest(t, srv, http.MethodGet, "/healthz",
		map[string]string{"X-Request-ID": "client-supplied"})
	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Errorf("request id = %q, want client-supplied", got)
	}
}
