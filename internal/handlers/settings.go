package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library_management/internal/models"
)

func (h *LibraryHandler) getSettings(c *gin.Context) {
	settings, err := h.lib.Settings.Get(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// updateSettings replaces the whole settings record, hours included.
func (h *LibraryHandler) updateSettings(c *gin.Context) {
	var req models.LibrarySettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	settings, err := h.lib.Settings.Update(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *LibraryHandler) isOpen(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid at, expected RFC 3339")
			return
		}
		at = t
	}

	open, err := h.lib.Settings.IsOpenAt(c.Request.Context(), at)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"at": at, "open": open})
}
