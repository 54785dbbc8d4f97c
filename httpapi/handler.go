package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/farhan32742/nexusform/formschema"
	"github.com/farhan32742/nexusform/session"
)

type Handler struct {
	svc SessionService
}

func NewHandler(svc SessionService) *Handler {
	return &Handler{svc: svc}
}

type turnRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.Start(r.Context())
	if err != nil {
		var schemaErr *formschema.SchemaError
		if errors.As(err, &schemaErr) {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *Handler) SubmitUserTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reply, err := h.svc.SubmitUserTurn(r.Context(), chi.URLParam(r, "id"), req.Text)
	h.writeReply(w, reply, err)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	h.writeReply(w, reply, err)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reply, err := h.svc.Reject(r.Context(), chi.URLParam(r, "id"), req.Text)
	h.writeReply(w, reply, err)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.Resume(r.Context(), chi.URLParam(r, "id"))
	h.writeReply(w, reply, err)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.Status(r.Context(), chi.URLParam(r, "id"))
	h.writeReply(w, reply, err)
}

func (h *Handler) CurrentRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.CurrentRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeReply(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.Abandon(r.Context(), chi.URLParam(r, "id"))
	h.writeReply(w, reply, err)
}

// writeReply maps engine errors onto status codes. An invalid transition is
// recoverable: the current state is returned alongside the error so the
// client can re-prompt.
func (h *Handler) writeReply(w http.ResponseWriter, reply *session.Reply, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, session.ErrUnknownSession):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, session.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, struct {
			Error string         `json:"error"`
			State *session.Reply `json:"state,omitempty"`
		}{Error: err.Error(), State: reply})
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		slog.Error("encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	slog.Warn("request failed", "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
