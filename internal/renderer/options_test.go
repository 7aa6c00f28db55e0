package renderer

import (
	"errors"
	"testing"
)

func TestValidateOptionsDefaults(t *testing.T) {
	req, err := ValidateOptions(RawRequest{URL: "http://localhost/d/abc"})
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if req.Width != 1000 || req.Height != 500 || req.Timeout != 30 {
		t.Fatalf("unexpected defaults: width=%d height=%d timeout=%d", req.Width, req.Height, req.Timeout)
	}
	if req.Encoding != EncodingPNG {
		t.Fatalf("expected png default, got %q", req.Encoding)
	}
	if req.Overrides.ScriptTags != nil || req.Overrides.Viewport != nil {
		t.Fatalf("expected empty overrides, got %+v", req.Overrides)
	}
}

func TestValidateOptionsUnparsableNumbers(t *testing.T) {
	req, err := ValidateOptions(RawRequest{
		URL:     "http://localhost/",
		Width:   "not-a-number",
		Height:  "also-not",
		Timeout: "nope",
	})
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if req.Width != 1000 {
		t.Fatalf("width = %d, want 1000", req.Width)
	}
	if req.Height != 500 {
		t.Fatalf("height = %d, want 500", req.Height)
	}
	if req.Timeout != 30 {
		t.Fatalf("timeout = %d, want 30", req.Timeout)
	}
}

func TestValidateOptionsOutOfRangeResetsToLargeDefaults(t *testing.T) {
	cases := []struct {
		name       string
		width      string
		height     string
		wantWidth  int
		wantHeight int
	}{
		{"too small", "5", "9", 2500, 1500},
		{"too large", "3001", "9999", 2500, 1500},
		{"boundaries kept", "10", "3000", 10, 3000},
		{"in range kept", "1920", "1080", 1920, 1080},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ValidateOptions(RawRequest{URL: "http://localhost/", Width: tc.width, Height: tc.height})
			if err != nil {
				t.Fatalf("validate error: %v", err)
			}
			if req.Width != tc.wantWidth {
				t.Fatalf("width = %d, want %d", req.Width, tc.wantWidth)
			}
			if req.Height != tc.wantHeight {
				t.Fatalf("height = %d, want %d", req.Height, tc.wantHeight)
			}
		})
	}
}

func TestValidateOptionsEncoding(t *testing.T) {
	for _, enc := range []string{EncodingPNG, EncodingJPEG, EncodingPDF} {
		if _, err := ValidateOptions(RawRequest{URL: "http://localhost/", Encoding: enc}); err != nil {
			t.Fatalf("encoding %q rejected: %v", enc, err)
		}
	}

	_, err := ValidateOptions(RawRequest{URL: "http://localhost/", Encoding: "gif"})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for gif, got %v", err)
	}
}

func TestValidateOptionsJSONData(t *testing.T) {
	req, err := ValidateOptions(RawRequest{
		URL:      "http://localhost/",
		JSONData: `{"emulateMedia":"print","viewport":{"width":800,"height":600}}`,
	})
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if req.Overrides.EmulateMedia != "print" {
		t.Fatalf("emulateMedia = %q, want print", req.Overrides.EmulateMedia)
	}
	if req.Overrides.Viewport == nil || req.Overrides.Viewport.Width != 800 {
		t.Fatalf("viewport not decoded: %+v", req.Overrides.Viewport)
	}

	if _, err := ValidateOptions(RawRequest{URL: "http://localhost/", JSONData: "{not json"}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for malformed jsonData, got %v", err)
	}

	// Unknown keys are rejected rather than passed through unchecked.
	if _, err := ValidateOptions(RawRequest{URL: "http://localhost/", JSONData: `{"dumpio":true}`}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for unknown override key, got %v", err)
	}
}
