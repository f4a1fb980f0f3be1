package handler

import (
	"log/slog"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/browser"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/storage"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/prompts"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Logger    *slog.Logger
	Batches   *generation.Registry
	Executors *generation.ExecutorRegistry
	Sessions  *browser.Registry
	Prompts   *prompts.Loader
	Notifier  *generation.Notifier
	Storage   *storage.Storage // optional, nil when no database is configured
	Defaults  generation.BatchConfig
}

// GenerationHandler serves the batch generation endpoints.
type GenerationHandler struct {
	logger    *slog.Logger
	batches   *generation.Registry
	executors *generation.ExecutorRegistry
	sessions  *browser.Registry
	prompts   *prompts.Loader
	notifier  *generation.Notifier
	storage   *storage.Storage
	defaults  generation.BatchConfig
}

// NewGenerationHandler creates a GenerationHandler.
func NewGenerationHandler(deps *Dependencies) *GenerationHandler {
	return &GenerationHandler{
		logger:    deps.Logger,
		batches:   deps.Batches,
		executors: deps.Executors,
		sessions:  deps.Sessions,
		prompts:   deps.Prompts,
		notifier:  deps.Notifier,
		storage:   deps.Storage,
		defaults:  deps.Defaults,
	}
}

// SessionHandler serves the browser session endpoints.
type SessionHandler struct {
	logger   *slog.Logger
	sessions *browser.Registry
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(deps *Dependencies) *SessionHandler {
	return &SessionHandler{
		logger:   deps.Logger,
		sessions: deps.Sessions,
	}
}
