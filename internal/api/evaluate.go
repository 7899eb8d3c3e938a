package api

import (
	"bytes"
	"net/http"

	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
	"github.com/MikeSquared-Agency/Ftopsis/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EvaluateHandler runs documents through the engine inside the request.
type EvaluateHandler struct {
	eval    Evaluator
	maxBody int64
}

func NewEvaluateHandler(e Evaluator, maxBody int64) *EvaluateHandler {
	return &EvaluateHandler{eval: e, maxBody: maxBody}
}

func (h *EvaluateHandler) Rank(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, input.ModeRank)
}

func (h *EvaluateHandler) Classify(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, input.ModeClassify)
}

// Evaluate honours ?mode= and otherwise detects the mode from the document.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	mode, err := input.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.evaluate(w, r, mode)
}

func (h *EvaluateHandler) Detect(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.maxBody)
	if err != nil {
		status, msg := evalStatus(err)
		writeError(w, status, msg)
		return
	}
	kind, mode, err := input.DetectVariant(body)
	if err != nil {
		status, msg := evalStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"kind": kind.String(), "mode": string(mode)})
}

func (h *EvaluateHandler) evaluate(w http.ResponseWriter, r *http.Request, mode input.Mode) {
	format := report.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := report.ParseFormat(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	body, err := readBody(w, r, h.maxBody)
	if err != nil {
		status, msg := evalStatus(err)
		writeError(w, status, msg)
		return
	}

	res, err := h.eval.EvaluateDocument(r.Context(), body, mode)
	if err != nil {
		status, msg := evalStatus(err)
		writeError(w, status, msg)
		return
	}

	switch format {
	case report.FormatJSON:
		writeJSON(w, http.StatusOK, h.eval.Document(res))
	case report.FormatTable, report.FormatXLSX:
		var buf bytes.Buffer
		if err := h.eval.Renderer().Write(&buf, format, res.Result); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if format == report.FormatXLSX {
			w.Header().Set("Content-Type", xlsxContentType)
			w.Header().Set("Content-Disposition", `attachment; filename="ftopsis.xlsx"`)
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
