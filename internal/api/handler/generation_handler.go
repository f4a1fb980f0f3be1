package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/api/dto"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/prompts"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StartGeneration handles POST /api/v1/generations
// Starts a multi-session batch generation and returns its batch id.
func (h *GenerationHandler) StartGeneration(c *gin.Context) {
	var req dto.StartGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	jobs, err := h.resolveJobs(&req)
	if err != nil {
		h.logger.Error("Failed to load prompts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}
	if len(jobs) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "No pending prompts to process",
		})
		return
	}

	executor, err := h.executors.Resolve(req.Platform)
	if err != nil {
		h.logger.Error("Unknown platform", slog.String("platform", req.Platform))
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Unknown platform: " + req.Platform,
		})
		return
	}

	resources, err := h.sessions.Checkout(req.Profiles)
	if err != nil {
		h.logger.Error("Profile has no running session", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	batchCfg := h.batchConfig(req.Config)
	coordCfg := &generation.CoordinatorConfig{
		Logger:   h.logger,
		Executor: executor,
		Notifier: h.notifier,
		Batch:    batchCfg,
		OnTerminal: func(batchID string) {
			h.batches.Remove(batchID)
		},
	}
	if h.storage != nil {
		coordCfg.Sink = h.storage
	}

	coordinator := generation.NewCoordinator(coordCfg)
	pool := generation.NewPool(resources, h.logger)

	// The batch outlives this request, so it must not run on the request
	// context.
	batchID, err := coordinator.Start(context.Background(), jobs, pool)
	if err != nil {
		h.logger.Error("Failed to start batch", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
		return
	}

	h.batches.Add(batchID, coordinator)
	if !coordinator.IsRunning() {
		// The batch finished before it was registered; keep the registry
		// lifecycle consistent.
		h.batches.Remove(batchID)
	}

	workers := batchCfg.MaxWorkers
	if pool.Size() < workers {
		workers = pool.Size()
	}

	h.logger.Info("Batch generation started",
		slog.String("batch_id", batchID),
		slog.String("platform", req.Platform),
		slog.Int("prompts", len(jobs)),
		slog.Int("workers", workers),
	)

	c.JSON(http.StatusOK, dto.StartGenerationResponse{
		BatchID:      batchID,
		TotalPrompts: len(jobs),
		Workers:      workers,
		Profiles:     req.Profiles,
	})
}

// GetProgress handles GET /api/v1/generations/:batch_id/progress
func (h *GenerationHandler) GetProgress(c *gin.Context) {
	batchID := c.Param("batch_id")

	coordinator, err := h.batches.Get(batchID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Batch not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get batch",
		})
		return
	}

	progress := coordinator.Progress()
	c.JSON(http.StatusOK, dto.ProgressResponse{
		BatchID:            batchID,
		Total:              progress.Total,
		Completed:          progress.Completed,
		Successful:         progress.Successful,
		Failed:             progress.Failed,
		InProgress:         progress.InProgress,
		ProgressPercentage: progress.Percentage,
		ElapsedSeconds:     progress.Elapsed.Seconds(),
		EstimatedRemaining: progress.EstimatedRemaining.Seconds(),
		IsRunning:          coordinator.IsRunning(),
	})
}

// StopGeneration handles POST /api/v1/generations/:batch_id/stop
// Stopping is idempotent: repeating the call has no further effect.
func (h *GenerationHandler) StopGeneration(c *gin.Context) {
	batchID := c.Param("batch_id")

	if h.batches.Stop(batchID) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Generation stopped",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Batch not active",
	})
}

// GetStats handles GET /api/v1/generations/stats
func (h *GenerationHandler) GetStats(c *gin.Context) {
	stats := gin.H{
		"active_batches": h.batches.Len(),
	}

	if h.storage != nil {
		persisted, err := h.storage.GetStats(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to get generation stats", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get generation stats",
			})
			return
		}
		stats["total_results"] = persisted.TotalResults
		stats["total_successful"] = persisted.TotalSuccessful
		stats["total_failed"] = persisted.TotalFailed
		stats["total_artifacts"] = persisted.TotalArtifacts
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// ListPromptFiles handles GET /api/v1/prompt-files
func (h *GenerationHandler) ListPromptFiles(c *gin.Context) {
	files, err := h.prompts.ListFiles()
	if err != nil {
		h.logger.Error("Failed to list prompt files", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list prompt files",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
	})
}

func (h *GenerationHandler) resolveJobs(req *dto.StartGenerationRequest) ([]*domain.Job, error) {
	var jobs []*domain.Job

	switch {
	case req.PromptFile != "":
		loaded, err := h.prompts.LoadFile(req.PromptFile)
		if err != nil {
			return nil, err
		}
		jobs = prompts.Pending(loaded)

	case len(req.Prompts) > 0:
		for _, text := range req.Prompts {
			jobs = append(jobs, &domain.Job{
				ID:        uuid.NewString(),
				Prompt:    text,
				Category:  "default",
				Attempt:   1,
				Status:    domain.JobStatusPending,
				CreatedAt: time.Now(),
			})
		}

	default:
		return nil, errors.New("prompt_file or prompts is required")
	}

	// Request-level parameters fill in anything the prompt itself did not set.
	for _, job := range jobs {
		if job.Parameters == nil {
			job.Parameters = make(map[string]string, len(req.Parameters))
		}
		for k, v := range req.Parameters {
			if _, ok := job.Parameters[k]; !ok {
				job.Parameters[k] = v
			}
		}
	}
	return jobs, nil
}

func (h *GenerationHandler) batchConfig(override *dto.BatchConfigDTO) generation.BatchConfig {
	cfg := h.defaults
	if override == nil {
		return cfg
	}
	if override.MaxWorkers > 0 {
		cfg.MaxWorkers = override.MaxWorkers
	}
	if override.TimeoutSeconds > 0 {
		cfg.JobTimeout = time.Duration(override.TimeoutSeconds) * time.Second
	}
	if override.RetryAttempts > 0 {
		cfg.RetryAttempts = override.RetryAttempts
	}
	if override.SubmissionDelay > 0 {
		cfg.SubmissionDelay = time.Duration(override.SubmissionDelay * float64(time.Second))
	}
	return cfg
}
