package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/errors"
	sio "github.com/matzehuels/structio/pkg/io"
	"github.com/matzehuels/structio/pkg/pipeline"
	"github.com/matzehuels/structio/pkg/store"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
	contentTypeSVG    = "image/svg+xml"
	contentTypeDOT    = "text/vnd.graphviz"

	// CacheHeader reports "hit" or "miss" on cacheable routes.
	CacheHeader = "X-Cache"
)

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	b, info, err := s.runner.Decode(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("X-Structure-Version", strconv.Itoa(int(info.Version)))
	if err := sio.WriteJSON(b, w); err != nil {
		s.logger.Warn("write response", "id", RequestID(r.Context()), "err", err)
	}
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	opts, err := convertOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	b, err := sio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.runner.Encode(r.Context(), b, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeBinary)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	sum, hit, err := s.runner.Inspect(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.GraphOptions{
		Format:   q.Get("format"),
		Loads:    q.Get("loads") != "false",
		Detailed: q.Get("detailed") == "true",
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	out, hit, err := s.runner.RenderGraph(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ct := contentTypeSVG
	if opts.Format == pipeline.FormatDOT {
		ct = contentTypeDOT
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

type typeInfo struct {
	ID              uint8  `json:"id"`
	Name            string `json:"name"`
	NonInteractable bool   `json:"non_interactable,omitempty"`
	Custom          bool   `json:"custom,omitempty"`
	Math            bool   `json:"math,omitempty"`
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types := s.runner.Registry.Types()
	out := make([]typeInfo, len(types))
	for i, t := range types {
		out[i] = typeInfo(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fingerprint": s.runner.Registry.Fingerprint(),
		"types":       out,
	})
}

func (s *Server) handlePutStructure(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	_, info, err := s.runner.Decode(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Put(r.Context(), data, store.NewRecord(data, &info.Info, info.Compressed))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/structures/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	data, rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		b, _, err := s.runner.Decode(r.Context(), data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		sio.WriteJSON(b, w)
		return
	}
	w.Header().Set("Content-Type", contentTypeBinary)
	w.Header().Set("X-Structure-Version", strconv.Itoa(int(rec.Version)))
	w.Header().Set("ETag", strconv.Quote(rec.SHA256))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// convertOptions reads version (default latest) and compress from the query.
func convertOptions(r *http.Request) (pipeline.ConvertOptions, error) {
	q := r.URL.Query()
	opts := pipeline.ConvertOptions{Version: codec.Latest}
	if v := q.Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "version %q is not a number", v)
		}
		if opts.Version, err = errors.ValidateVersion(n, codec.Latest); err != nil {
			return opts, err
		}
	}
	if c := q.Get("compress"); c != "" {
		v, err := strconv.ParseBool(c)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "compress %q is not a boolean", c)
		}
		opts.Compress = v
	}
	return opts, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return nil, false
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return nil, false
	}
	if len(data) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty request body"))
		return nil, false
	}
	return data, true
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnsupportedVersion, errors.ErrCodeCapacity, errors.ErrCodeMissingData, errors.ErrCodeInvalidData,
		errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	writeErrorBody(w, status, string(code), msg)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeErrorBody(w http.ResponseWriter, status int, code, msg string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = msg
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
