package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/benchdef/pkg/buildinfo"
	"github.com/matzehuels/benchdef/pkg/errors"
	"github.com/matzehuels/benchdef/pkg/framework"
	"github.com/matzehuels/benchdef/pkg/pipeline"
	"github.com/matzehuels/benchdef/pkg/store"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type catalogResponse struct {
	Hash       string                 `json:"hash"`
	Count      int                    `json:"count"`
	Frameworks []framework.Definition `json:"frameworks"`
}

type snapshotListResponse struct {
	Count     int          `json:"count"`
	Snapshots []store.Info `json:"snapshots"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: fmt.Sprintf(format, args...),
	}})
}

// writeResolveError maps resolution failures onto HTTP statuses: missing
// files are 404, definition errors are 422, everything else is 500.
func writeResolveError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeFileNotFound, errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidDocument, errors.ErrCodeMalformedEntry,
		errors.ErrCodeUnknownParent, errors.ErrCodeCyclicExtends,
		errors.ErrCodeMissingVersion, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidName:
		status = http.StatusUnprocessableEntity
	case "":
		code = errors.ErrCodeInternal
	}
	writeError(w, status, code, "%s", errors.UserMessage(err))
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, errors.ErrCodeSnapshotNotFound, "%s", err)
	case stderrors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusConflict, errors.ErrCodeInvalidInput, "%s", err)
	default:
		writeError(w, http.StatusBadGateway, errors.ErrCodeInternal, "snapshot store unavailable")
	}
}

// matchETag writes the entity tag for tag and reports whether the request
// already holds the current version, in which case a 304 has been sent.
func matchETag(w http.ResponseWriter, r *http.Request, tag string) bool {
	if tag == "" {
		return false
	}
	etag := `"` + tag + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleListFrameworks(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog(r.Context())
	if err != nil {
		writeResolveError(w, err)
		return
	}
	if matchETag(w, r, c.DocumentHash()) {
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Hash:       c.DocumentHash(),
		Count:      c.Len(),
		Frameworks: c.Definitions(),
	})
}

func (s *Server) handleGetFramework(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog(r.Context())
	if err != nil {
		writeResolveError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	def, ok := c.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "framework %q is not defined", name)
		return
	}
	if matchETag(w, r, c.DocumentHash()) {
		return
	}
	writeJSON(w, http.StatusOK, def)
}

type imageResponse struct {
	framework.DockerImage
	Ref string `json:"ref"`
}

func (s *Server) handleGetFrameworkImage(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog(r.Context())
	if err != nil {
		writeResolveError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	def, ok := c.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "framework %q is not defined", name)
		return
	}
	if matchETag(w, r, c.DocumentHash()) {
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{DockerImage: def.DockerImage, Ref: def.DockerImage.Ref()})
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	if s.frozen != nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeUnsupported,
			"lineage is unavailable for an imported catalog")
		return
	}

	opts := s.opts
	opts.Format = r.URL.Query().Get("format")
	if opts.Format == "" {
		opts.Format = pipeline.FormatSVG
	}
	opts.Detailed = r.URL.Query().Get("detailed") == "true"
	if err := pipeline.ValidateFormat(opts.Format); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidFormat, "%s", err)
		return
	}

	doc, err := s.runner.LoadDocument(r.Context(), opts)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	if matchETag(w, r, fmt.Sprintf("%s-%s-%t", doc.Hash, opts.Format, opts.Detailed)) {
		return
	}

	data, err := s.runner.Diagram(r.Context(), doc, opts)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	w.Header().Set("Content-Type", diagramContentType(opts.Format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func diagramContentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz"
	}
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput,
				"limit must be a non-negative integer")
			return
		}
		limit = n
	}
	infos, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotListResponse{Count: len(infos), Snapshots: infos})
}

func (s *Server) handlePublishSnapshot(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog(r.Context())
	if err != nil {
		writeResolveError(w, err)
		return
	}
	snap := store.NewSnapshot(c)
	if err := s.store.Publish(r.Context(), snap); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("published snapshot", "id", snap.ID, "definitions", snap.Count)
	writeJSON(w, http.StatusCreated, snap.Info())
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Latest(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("deleted snapshot", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
