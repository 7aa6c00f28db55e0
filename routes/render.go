package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"render-service/internal/logger"
	"render-service/internal/queue"
	"render-service/internal/renderer"
	"render-service/internal/telemetry"
	"render-service/middleware"
	"render-service/models"
	"render-service/services"
	"render-service/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const serviceVersion = "1.0.0"

func SetupRenderRoutes(
	router *gin.Engine,
	renders *services.RenderService,
	authMiddleware *middleware.AuthMiddleware,
	rdb *redis.Client,
	asynqClient *asynq.Client,
	metrics *telemetry.Metrics,
) {
	group := router.Group("/render", authMiddleware.RequireAuthToken())

	group.GET("", handleRender(renders))
	group.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": serviceVersion})
	})
	group.POST("/queue", handleEnqueue(asynqClient, metrics))
	group.GET("/result/:id", handleResult(rdb))
}

// rawRequestFromQuery maps query parameters onto a raw render request.
// Numeric fields stay text; the validator owns parsing and defaults.
func rawRequestFromQuery(c *gin.Context) renderer.RawRequest {
	return renderer.RawRequest{
		URL:       c.Query("url"),
		Width:     c.Query("width"),
		Height:    c.Query("height"),
		FilePath:  c.Query("filePath"),
		Timeout:   c.Query("timeout"),
		RenderKey: c.Query("renderKey"),
		Domain:    c.Query("domain"),
		Timezone:  c.Query("timezone"),
		Encoding:  c.Query("encoding"),
		JSONData:  c.Query("jsonData"),
	}
}

func handleRender(renders *services.RenderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := rawRequestFromQuery(c)
		if raw.URL == "" {
			utils.RespondWithBadRequest(c, "Missing url parameter", nil)
			return
		}

		result, err := renders.Render(c.Request.Context(), raw)
		if err != nil {
			logger.Error("render failed", "url", raw.URL, "request_id", middleware.GetRequestID(c), "error", err)
			switch {
			case errors.Is(err, renderer.ErrBadRequest):
				utils.RespondWithBadRequest(c, err.Error(), nil)
			case errors.Is(err, renderer.ErrTimeout):
				utils.RespondWithTimeout(c, err.Error())
			case errors.Is(err, services.ErrUnavailable):
				utils.RespondWithUnavailable(c, err.Error())
			default:
				utils.RespondWithInternalError(c, "Rendering failed", gin.H{"error": err.Error()})
			}
			return
		}

		c.Header("X-Render-File-Path", result.FilePath)
		c.File(result.FilePath)
	}
}

func handleEnqueue(asynqClient *asynq.Client, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw renderer.RawRequest
		if err := c.ShouldBindJSON(&raw); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		if raw.URL == "" {
			utils.RespondWithBadRequest(c, "Missing url field", nil)
			return
		}

		// Reject malformed requests at the boundary instead of letting
		// them fail later inside the worker.
		if _, err := renderer.ValidateOptions(raw); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), nil)
			return
		}

		id := uuid.NewString()
		task, err := queue.NewRenderCaptureTask(id, raw)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create render task", nil)
			return
		}

		if _, err := asynqClient.EnqueueContext(c.Request.Context(), task); err != nil {
			logger.Error("failed to enqueue render task", "id", id, "error", err)
			utils.RespondWithInternalError(c, "Failed to enqueue render task", nil)
			return
		}

		if metrics != nil {
			metrics.RecordQueuedRender(c.Request.Context())
		}
		c.JSON(http.StatusAccepted, gin.H{"id": id})
	}
}

func handleResult(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		b, err := rdb.Get(c.Request.Context(), queue.ResultKey(id)).Bytes()
		if err == redis.Nil {
			utils.RespondWithNotFound(c, "Render job result not found or still pending")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load render job result", nil)
			return
		}

		var record models.RenderJobResult
		if err := json.Unmarshal(b, &record); err != nil {
			utils.RespondWithInternalError(c, "Corrupt render job result", nil)
			return
		}

		c.JSON(http.StatusOK, record)
	}
}
