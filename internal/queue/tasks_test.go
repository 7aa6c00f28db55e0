package queue

import (
	"encoding/json"
	"testing"

	"render-service/internal/renderer"
)

func TestNewRenderCaptureTask(t *testing.T) {
	raw := renderer.RawRequest{
		URL:      "http://localhost:3000/d/abc?orgId=1",
		Width:    "1920",
		Encoding: "pdf",
		JSONData: `{"emulateMedia":"print"}`,
	}

	task, err := NewRenderCaptureTask("job-1", raw)
	if err != nil {
		t.Fatalf("task creation failed: %v", err)
	}
	if task.Type() != TaskRenderCapture {
		t.Fatalf("task type = %q", task.Type())
	}

	var payload RenderCapturePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
	if payload.ID != "job-1" {
		t.Fatalf("id = %q", payload.ID)
	}
	if payload.Request.URL != raw.URL || payload.Request.Width != raw.Width {
		t.Fatalf("request fields lost in transit: %+v", payload.Request)
	}
	if payload.Request.JSONData != raw.JSONData {
		t.Fatalf("jsonData lost in transit: %q", payload.Request.JSONData)
	}
}

func TestResultKey(t *testing.T) {
	if got := ResultKey("abc-123"); got != "render:result:abc-123" {
		t.Fatalf("result key = %q", got)
	}
}
