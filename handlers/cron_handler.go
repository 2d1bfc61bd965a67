package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"stepRivalsAPI/services"
	"time"
)

// CronHandler exposes the lifecycle pass for external schedulers. The
// in-process gocron job covers normal operation; this endpoint exists for
// manual reruns and platform cron triggers.
type CronHandler struct {
	cronService *services.CronService
}

func NewCronHandler(cronService *services.CronService) *CronHandler {
	return &CronHandler{
		cronService: cronService,
	}
}

func (h *CronHandler) RunPass(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("CRON_SECRET")
	provided := r.Header.Get("X-Cron-Secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) != 1 {
		respondWithError(w, http.StatusUnauthorized, "Invalid cron secret")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	summary, err := h.cronService.RunPass(ctx)
	if err != nil {
		respondWithJSON(w, http.StatusInternalServerError, summary)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
