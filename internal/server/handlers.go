package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/randlist/pkg/buildinfo"
	errs "github.com/matzehuels/randlist/pkg/errors"
	rlio "github.com/matzehuels/randlist/pkg/io"
	"github.com/matzehuels/randlist/pkg/list"
	"github.com/matzehuels/randlist/pkg/pipeline"
	"github.com/matzehuels/randlist/pkg/render/nodelink"
	"github.com/matzehuels/randlist/pkg/store"
)

const (
	contentTypeBinary = "application/octet-stream"
	contentTypeJSON   = "application/json"
	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeDOT    = "text/vnd.graphviz"
	contentTypeSVG    = "image/svg+xml"

	headerNodes = "X-Randlist-Nodes"
	headerHash  = "X-Randlist-Sha256"
)

// ListResponse describes a stored list.
type ListResponse struct {
	ID        string `json:"id"`
	Nodes     int    `json:"nodes"`
	CrossRefs int    `json:"cross_refs"`
	Bytes     int    `json:"bytes"`
	SHA256    string `json:"sha256"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.counters.Snapshot())
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	seq, _, err := s.runner.Build(r.Context(), s.body(w, r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	enc, err := s.runner.Encode(r.Context(), seq, "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set(headerNodes, strconv.Itoa(seq.Len()))
	w.Header().Set(headerHash, enc.Hash)
	writeBytes(w, contentTypeBinary, enc.Data)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	format, err := decodeFormat(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := io.ReadAll(s.body(w, r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	seq, err := s.runner.DecodeBytes(r.Context(), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set(headerHash, store.Hash(data))
	s.writeSequence(w, r, seq, data, format)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	res, err := s.runner.RoundTrip(r.Context(), s.body(w, r), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("stored list", "id", id, "nodes", res.Stats.NodeCount, "bytes", res.Stats.EncodedBytes)

	w.Header().Set("Location", "/v1/lists/"+id)
	writeJSON(w, http.StatusCreated, ListResponse{
		ID:        id,
		Nodes:     res.Stats.NodeCount,
		CrossRefs: res.Stats.CrossRefs,
		Bytes:     res.Stats.EncodedBytes,
		SHA256:    res.Hash,
	})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	id, err := listID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	format, err := decodeFormat(r, pipeline.FormatBinary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set(headerHash, store.Hash(data))
	if format == pipeline.FormatBinary {
		writeBytes(w, contentTypeBinary, data)
		return
	}

	seq, err := s.runner.DecodeBytes(r.Context(), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSequence(w, r, seq, data, format)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	id, err := listID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeSequence renders seq in format. data is the encoded stream it came
// from, served as is for the binary format.
func (s *Server) writeSequence(w http.ResponseWriter, r *http.Request, seq *list.Sequence, data []byte, format string) {
	w.Header().Set(headerNodes, strconv.Itoa(seq.Len()))

	var buf bytes.Buffer
	switch format {
	case pipeline.FormatBinary:
		writeBytes(w, contentTypeBinary, data)
	case pipeline.FormatJSON:
		if err := rlio.WriteJSON(seq, &buf); err != nil {
			s.writeError(w, err)
			return
		}
		writeBytes(w, contentTypeJSON, buf.Bytes())
	case pipeline.FormatText:
		if err := rlio.WriteText(seq, &buf); err != nil {
			s.writeError(w, err)
			return
		}
		writeBytes(w, contentTypeText, buf.Bytes())
	case pipeline.FormatDOT:
		writeBytes(w, contentTypeDOT, []byte(nodelink.ToDOT(seq, nodelink.Options{})))
	case pipeline.FormatSVG:
		svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(seq, nodelink.Options{}))
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeBytes(w, contentTypeSVG, svg)
	}
}

// body limits the request body to the configured size.
func (s *Server) body(w http.ResponseWriter, r *http.Request) io.Reader {
	return http.MaxBytesReader(w, r.Body, s.cfg.MaxBody)
}

func decodeFormat(r *http.Request, def string) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		return def, nil
	}
	if format == pipeline.FormatTable {
		return "", errs.New(errs.ErrCodeInvalidInput, "format %q is only available in the CLI", format)
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "format")
	}
	return format, nil
}

func listID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", errs.New(errs.ErrCodeInvalidKey, "list id %q is not a uuid", id)
	}
	return id, nil
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

// classify maps an error to an HTTP status and an error code.
func classify(err error) (int, errs.Code) {
	var tooLarge *http.MaxBytesError
	switch {
	case store.IsNotFound(err):
		return http.StatusNotFound, errs.ErrCodeNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, errs.ErrCodeInvalidInput
	case errs.Is(err, errs.ErrCodeTooManyNodes):
		return http.StatusRequestEntityTooLarge, errs.ErrCodeTooManyNodes
	case errs.IsInputError(err):
		return http.StatusBadRequest, errs.GetCode(err)
	}
	if code := errs.GetCode(err); code != "" {
		return http.StatusInternalServerError, code
	}
	return http.StatusInternalServerError, errs.ErrCodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
