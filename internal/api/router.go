package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freightdesk/quote/internal/api/handlers"
	"freightdesk/quote/internal/api/middleware"
	"freightdesk/quote/internal/config"
	"freightdesk/quote/internal/email"
	"freightdesk/quote/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	taskClient handlers.IAsynqClient,
	offerService services.IOfferService,
	configService services.IOfferConfigService,
) *gin.Engine {
	r := gin.New()

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg)

	// Apply global middleware first (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware())

	eventHandler := handlers.NewRestEventHandler(taskClient)
	offerHandler := handlers.NewRestOfferHandler(offerService)
	configHandler := handlers.NewRestConfigHandler(configService)

	v1 := r.Group("/v1")
	{
		v1.POST("/events", rateLimiter.Limit(), eventHandler.PostEvent)

		v1.GET("/offers/:offerNo", offerHandler.GetOffer)

		v1.GET("/offer-configuration", configHandler.GetConfiguration)
		v1.PUT("/offer-configuration", configHandler.UpdateConfiguration)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
	}

	return r
}

// Mailbox reads the newest message captured for an address in mock mode.
type Mailbox interface {
	Latest(ctx context.Context, address string) (*email.MockEmail, error)
}

const (
	mailboxPollAttempts = 10
	mailboxPollDelay    = 200 * time.Millisecond
)

// SetupServiceRouter configures and returns the service Gin engine.
// mailbox may be nil when mails are not captured.
func SetupServiceRouter(cfg *config.Config, mailbox Mailbox, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			slog.Info("received shutdown command via service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				slog.Warn("shutdown already signaled")
			}
		case "getTestEmail":
			if mailbox == nil || !cfg.MockServices {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Mail capture is not enabled"})
				return
			}
			var args []string // ["email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 1 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [email]"})
				return
			}
			address := args[0]

			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			var msg *email.MockEmail
			for i := 0; i < mailboxPollAttempts && msg == nil; i++ {
				var err error
				msg, err = mailbox.Latest(ctx, address)
				if err != nil {
					slog.Error("service API: failed to read mock mailbox", "address", address, "error", err)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				if msg == nil {
					time.Sleep(mailboxPollDelay)
				}
			}
			if msg == nil {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("No test email for %s", address)})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": msg})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
