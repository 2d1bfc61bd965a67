package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/steps"
	"stepRivalsAPI/middleware"
	"stepRivalsAPI/services"
	"strconv"
	"time"
)

type StepHandler struct {
	stepService *services.StepService
}

func NewStepHandler(stepService *services.StepService) *StepHandler {
	return &StepHandler{
		stepService: stepService,
	}
}

func (h *StepHandler) UpsertSteps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req steps.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.stepService.Upsert(ctx, userID, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *StepHandler) GetRecentSteps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'days' must be a positive integer")
			return
		}
		days = parsed
	}

	entries, err := h.stepService.Recent(ctx, userID, days)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *StepHandler) GetEditWindow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	cutoff, lastFinalized, err := h.stepService.EditWindow(ctx, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"edit_cutoff_date":    cutoff.Format(timeutil.DateLayout),
		"last_finalized_date": lastFinalized.Format(timeutil.DateLayout),
	})
}
