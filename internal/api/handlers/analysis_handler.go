package handlers

import (
	"net/http"

	"github.com/markdave123-py/Moleqa/internal/models"
	"github.com/markdave123-py/Moleqa/internal/services"
)

type AnalysisHandler struct {
	analyses *services.AnalysisService
}

func NewAnalysisHandler(analyses *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses}
}

func (h *AnalysisHandler) SubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	analysis, err := h.analyses.Submit(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, analysis)
}

func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Analysis not found")
		return
	}
	analysis, err := h.analyses.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// ListMoleculeAnalyses answers with an empty array for unknown molecules.
func (h *AnalysisHandler) ListMoleculeAnalyses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusOK, []models.Analysis{})
		return
	}
	list, err := h.analyses.ListByMolecule(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
