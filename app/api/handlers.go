package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rcf-tools/podiumbot/app/database"
	"github.com/rcf-tools/podiumbot/app/tasks"
)

type Handler struct {
	runRepo   database.RunRepository
	scheduler tasks.TaskSchedulerInterface
	version   string
}

func NewHandler(runRepo database.RunRepository, scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		runRepo:   runRepo,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if count, err := h.runRepo.GetRunCount(); err == nil {
		health["runs"] = count
	}

	c.JSON(http.StatusOK, health)
}

// GetStatus reports the most recent run, or a bare "no runs yet" before the
// first one finishes.
func (h *Handler) GetStatus(c *gin.Context) {
	run, err := h.runRepo.LatestRun()
	if err != nil {
		slog.Error("Database error", "operation", "latest_run", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if run == nil {
		c.JSON(http.StatusOK, StatusResponse{Version: h.version})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Version: h.version,
		LastRun: runToResponse(*run),
	})
}

func (h *Handler) TriggerRun(c *gin.Context) {
	if err := h.scheduler.TriggerRun(); err != nil {
		slog.Error("Failed to trigger run", "error", err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "run enqueued"})
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	runs, err := h.runRepo.RecentRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "recent_runs", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]*RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, runToResponse(run))
	}
	c.JSON(http.StatusOK, gin.H{"runs": responses})
}

func (h *Handler) GetRunPodiums(c *gin.Context) {
	runID := c.Param("id")

	podiums, err := h.runRepo.PodiumsForRun(runID)
	if err != nil {
		slog.Error("Database error", "operation", "podiums_for_run", "run_id", runID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]PodiumResponse, 0, len(podiums))
	for _, p := range podiums {
		responses = append(responses, PodiumResponse{
			EventName: p.EventName,
			EventURL:  p.EventURL,
			Rider:     p.Rider,
			Rank:      p.Rank,
			Category:  p.Category,
			ResultAt:  p.ResultAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "podiums": responses})
}

func runToResponse(run database.Run) *RunResponse {
	return &RunResponse{
		ID:               run.ID,
		StartedAt:        run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:       run.FinishedAt.UTC().Format(time.RFC3339),
		Status:           run.Status,
		Extracted:        run.Extracted,
		OutsideWindow:    run.OutsideWindow,
		RankRejected:     run.RankRejected,
		Ignored:          run.Ignored,
		CategoryRejected: run.CategoryRejected,
		Duplicates:       run.Duplicates,
		Posted:           run.Posted,
		Error:            run.Error,
	}
}
