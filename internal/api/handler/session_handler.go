package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/api/dto"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/browser"
	"github.com/gin-gonic/gin"
)

// StartSession handles POST /api/v1/sessions
// Launches a browser for the named profile and registers the session.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), req.ProfileName)
	if err != nil {
		if errors.Is(err, browser.ErrSessionExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.logger.Error("Failed to start session",
			slog.String("profile", req.ProfileName),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to start browser session",
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// StopSession handles DELETE /api/v1/sessions/:profile_name
func (h *SessionHandler) StopSession(c *gin.Context) {
	profileName := c.Param("profile_name")

	if err := h.sessions.Stop(c.Request.Context(), profileName); err != nil {
		if errors.Is(err, browser.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.logger.Error("Failed to stop session",
			slog.String("profile", profileName),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to stop browser session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session stopped",
	})
}

// ListSessions handles GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.sessions.List(),
	})
}
