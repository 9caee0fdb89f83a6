// File: handlers/interaction.go
package handlers

import (
	"errors"
	"net/http"

	"meetpoint/models"
	"meetpoint/services/interaction"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InteractionHandler exposes the negotiation engine over HTTP.
type InteractionHandler struct {
	Service interaction.InteractionService
	Logger  *zap.Logger
}

// NewInteractionHandler constructs a handler around the engine.
func NewInteractionHandler(svc interaction.InteractionService, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{Service: svc, Logger: logger}
}

func actorID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// respondError maps engine errors onto transport status codes. Business
// rule codes travel verbatim; internal failures stay generic.
func (h *InteractionHandler) respondError(c *gin.Context, err error) {
	var engineErr *interaction.Error
	if !errors.As(err, &engineErr) {
		h.Logger.Error("unexpected handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again later."})
		return
	}

	switch engineErr.Kind {
	case interaction.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": engineErr.Message, "code": engineErr.Code})
	case interaction.KindAuthorization:
		c.JSON(http.StatusForbidden, gin.H{"error": engineErr.Message, "code": engineErr.Code})
	case interaction.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": engineErr.Message, "code": engineErr.Code})
	case interaction.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": engineErr.Message, "code": engineErr.Code})
	case interaction.KindUpstream:
		status := http.StatusServiceUnavailable
		if engineErr.Code == interaction.CodeNoCandidates {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": engineErr.Message, "code": engineErr.Code})
	default:
		h.Logger.Error("internal engine error",
			zap.String("code", engineErr.Code), zap.Error(engineErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again later."})
	}
}

// CreateRequest opens a negotiation anchored to a post.
func (h *InteractionHandler) CreateRequest(c *gin.Context) {
	var input struct {
		ProposedStartAt string `json:"proposedStartAt" binding:"required"`
		DurationSec     *int   `json:"durationSec"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	detail, err := h.Service.Create(c.Request.Context(), actorID(c), interaction.CreateInput{
		PostID:          c.Param("postId"),
		ProposedStartAt: input.ProposedStartAt,
		DurationSec:     input.DurationSec,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// Inbox lists the newest requests addressed to the caller.
func (h *InteractionHandler) Inbox(c *gin.Context) {
	items, err := h.Service.ListInbox(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Outbox lists the newest requests the caller initiated.
func (h *InteractionHandler) Outbox(c *gin.Context) {
	items, err := h.Service.ListOutbox(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetRequest returns the full projection of one request.
func (h *InteractionHandler) GetRequest(c *gin.Context) {
	detail, err := h.Service.GetRequest(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Respond applies an ACCEPT, REJECT or COUNTER to the live proposal.
func (h *InteractionHandler) Respond(c *gin.Context) {
	var input struct {
		Action          string `json:"action" binding:"required"`
		ProposedStartAt string `json:"proposedStartAt"`
		DurationSec     *int   `json:"durationSec"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	detail, err := h.Service.Respond(c.Request.Context(), actorID(c), c.Param("id"), interaction.RespondInput{
		Action:          models.RespondAction(input.Action),
		ProposedStartAt: input.ProposedStartAt,
		DurationSec:     input.DurationSec,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CancelRequest withdraws an open request; requester only.
func (h *InteractionHandler) CancelRequest(c *gin.Context) {
	if err := h.Service.Cancel(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(models.RequestCancelled)})
}
