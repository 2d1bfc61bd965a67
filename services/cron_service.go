package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"stepRivalsAPI/internal/clock"
	"stepRivalsAPI/middleware"
)

// CronSummary reports one orchestrator pass.
type CronSummary struct {
	RanAt      time.Time `json:"ran_at"`
	Activated  int       `json:"activated"`
	DaysScored int       `json:"days_scored"`
	Finalized  int       `json:"finalized"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// CronService is the single scheduled entry point: one pass runs activation,
// daily scoring and finalization for all challenges, in that order, so a
// challenge that both starts and needs scoring on the same pass behaves
// correctly and final totals already include the day's points. Every stage is
// idempotent, so a crashed or duplicated pass is retried safely by the next
// one.
type CronService struct {
	challenges *ChallengeService
	clock      clock.Clock
}

func NewCronService(challenges *ChallengeService, clk clock.Clock) *CronService {
	return &CronService{challenges: challenges, clock: clk}
}

func (s *CronService) RunPass(ctx context.Context) (*CronSummary, error) {
	summary := &CronSummary{RanAt: s.clock.Now()}

	activated, err := s.challenges.ActivatePending(ctx)
	summary.Activated = activated
	if err != nil {
		return s.finish(summary, fmt.Errorf("activation: %w", err))
	}

	scored, err := s.challenges.ScoreFinalizedDays(ctx)
	summary.DaysScored = scored
	if err != nil {
		return s.finish(summary, fmt.Errorf("daily scoring: %w", err))
	}

	finalized, err := s.challenges.FinalizeEnded(ctx)
	summary.Finalized = finalized
	if err != nil {
		return s.finish(summary, fmt.Errorf("finalization: %w", err))
	}

	return s.finish(summary, nil)
}

func (s *CronService) finish(summary *CronSummary, err error) (*CronSummary, error) {
	middleware.RecordCronTransitions(summary.Activated, summary.DaysScored, summary.Finalized)
	if err != nil {
		summary.Error = err.Error()
		middleware.RecordCronPass("failure")
		log.Printf("Cron pass failed: %v", err)
		return summary, err
	}
	summary.Success = true
	middleware.RecordCronPass("success")
	log.Printf("Cron pass complete: activated=%d scored=%d finalized=%d",
		summary.Activated, summary.DaysScored, summary.Finalized)
	return summary, nil
}

// StartScheduler runs the pass on an interval until the scheduler is shut
// down. Failures are logged and retried on the next tick.
func (s *CronService) StartScheduler(interval time.Duration) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := s.RunPass(ctx); err != nil {
				log.Printf("[Scheduler] cron pass error: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule cron pass: %w", err)
	}

	scheduler.Start()
	log.Printf("Challenge cron scheduler started (every %s)", interval)
	return scheduler, nil
}
