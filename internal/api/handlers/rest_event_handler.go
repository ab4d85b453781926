package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
	"freightdesk/quote/internal/tasks"
)

// IAsynqClient defines the interface for the Asynq client methods used by the handler.
// This allows easier mocking than using the concrete asynq.Client.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RestEventHandler accepts extracted mail events and queues them for the offer workflow.
type RestEventHandler struct {
	taskClient IAsynqClient
}

// NewRestEventHandler creates a new RestEventHandler.
func NewRestEventHandler(taskClient IAsynqClient) *RestEventHandler {
	return &RestEventHandler{taskClient: taskClient}
}

// PostEvent validates and enqueues one event.
// Handles POST /v1/events
func (h *RestEventHandler) PostEvent(c *gin.Context) {
	var ev models.InboundEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ctx := c.Request.Context()

	switch ev.Kind {
	case models.EventOther:
		logger.Debug(ctx, "unrelated mail ignored", "from", ev.Message.From)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	case models.EventCustomerNewRequest:
	case models.EventCustomerCorrection, models.EventSupplierNewOffer:
		if strings.TrimSpace(ev.OfferNo) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offer_no is required for " + string(ev.Kind)})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event kind"})
		return
	}
	if ev.Kind == models.EventSupplierNewOffer && strings.TrimSpace(ev.Message.From) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message.from is required for supplier replies"})
		return
	}

	task, err := tasks.NewOfferEventTask(ev)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue event"})
		return
	}
	info, err := h.taskClient.EnqueueContext(ctx, task)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue event"})
		return
	}
	logger.Info(ctx, "offer event queued", "kind", ev.Kind, "offer_no", ev.OfferNo, "task_id", info.ID)
	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID})
}
