package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"render-service/internal/logger"
	"render-service/internal/renderer"
	"render-service/models"
	"render-service/services"
)

const (
	TaskRenderCapture = "render:capture"

	resultKeyPrefix = "render:result:"
	resultTTL       = 24 * time.Hour
)

// RenderCapturePayload carries a raw render request through the queue.
type RenderCapturePayload struct {
	ID      string              `json:"id"`
	Request renderer.RawRequest `json:"request"`
}

// NewRenderCaptureTask enqueues one render. Retry is queue-layer policy; the
// orchestrator itself never retries.
func NewRenderCaptureTask(id string, raw renderer.RawRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(RenderCapturePayload{ID: id, Request: raw})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskRenderCapture,
		payload,
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("renders"),
	), nil
}

// ResultKey is the Redis key a job's outcome is stored under.
func ResultKey(id string) string {
	return resultKeyPrefix + id
}

// TaskProcessor handles queued render tasks.
type TaskProcessor struct {
	renders *services.RenderService
	rdb     *redis.Client
}

func NewTaskProcessor(renders *services.RenderService, rdb *redis.Client) *TaskProcessor {
	return &TaskProcessor{renders: renders, rdb: rdb}
}

func (p *TaskProcessor) HandleRenderCapture(ctx context.Context, t *asynq.Task) error {
	var payload RenderCapturePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal render payload: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("processing queued render", "id", payload.ID, "url", payload.Request.URL)

	res, renderErr := p.renders.Render(ctx, payload.Request)

	record := models.RenderJobResult{
		ID:         payload.ID,
		Status:     models.RenderStatusDone,
		FinishedAt: time.Now().UTC(),
	}
	if renderErr != nil {
		record.Status = models.RenderStatusFailed
		record.Error = renderErr.Error()
	} else {
		record.FilePath = res.FilePath
	}

	if err := p.storeResult(ctx, record); err != nil {
		logger.Error("failed to store render result", "id", payload.ID, "error", err)
	}

	if renderErr != nil {
		// Malformed requests will not improve with retries.
		if errors.Is(renderErr, renderer.ErrBadRequest) {
			return fmt.Errorf("render %s: %v: %w", payload.ID, renderErr, asynq.SkipRetry)
		}
		return fmt.Errorf("render %s: %w", payload.ID, renderErr)
	}

	logger.Info("queued render complete", "id", payload.ID, "filePath", res.FilePath)
	return nil
}

func (p *TaskProcessor) storeResult(ctx context.Context, record models.RenderJobResult) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, ResultKey(record.ID), b, resultTTL).Err()
}
