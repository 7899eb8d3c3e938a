package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

type RunsHandler struct {
	store   store.Store
	sub     Submitter
	maxBody int64
}

func NewRunsHandler(s store.Store, sub Submitter, maxBody int64) *RunsHandler {
	return &RunsHandler{store: s, sub: sub, maxBody: maxBody}
}

type CreateRunRequest struct {
	Document json.RawMessage `json:"document"`
	Mode     string          `json:"mode,omitempty"`
	Source   string          `json:"source,omitempty"`
}

func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.maxBody)
	if err != nil {
		status, msg := evalStatus(err)
		writeError(w, status, msg)
		return
	}

	var req CreateRunRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Document) == 0 || string(req.Document) == "null" {
		writeError(w, http.StatusBadRequest, "document is required")
		return
	}
	if _, err := input.ParseMode(req.Mode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.sub.Submit(r.Context(), req.Document, req.Mode, req.Source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Mode:   q.Get("mode"),
		Source: q.Get("source"),
	}
	if s := q.Get("status"); s != "" {
		status := store.RunStatus(s)
		filter.Status = &status
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}
