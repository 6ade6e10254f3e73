package api

import (
	"errors"
	"net/http"
)

const formFile = "file"

// SessionHandler handles upload and deletion of trial sessions.
type SessionHandler struct {
	deps           SessionDependencies
	maxUploadBytes int64
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies, maxUploadBytes int64) *SessionHandler {
	return &SessionHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// HandleUpload handles POST /sessions with a multipart "file" field.
func (h *SessionHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "upload"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(formFile)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeServiceError(w, WrapKind(op, ErrPayloadTooLarge, err))
		case errors.Is(err, http.ErrMissingFile):
			writeServiceError(w, WrapKind(op, errInvalidQuery, ErrMissingFile))
		default:
			writeServiceError(w, WrapKind(op, errInvalidQuery, err))
		}
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.deps.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
