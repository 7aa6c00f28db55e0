package renderer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Supported output encodings.
const (
	EncodingPNG  = "png"
	EncodingJPEG = "jpeg"
	EncodingPDF  = "pdf"
)

var (
	// ErrBadRequest marks client-request errors: unsupported encoding or
	// malformed jsonData. These surface before any engine interaction.
	ErrBadRequest = errors.New("bad render request")

	// ErrTimeout is returned when the page does not finish rendering its
	// panels within the request timeout. Distinct from engine errors.
	ErrTimeout = errors.New("render timed out waiting for panels; use the timeout parameter to raise the limit")
)

const (
	defaultWidth   = 1000
	defaultHeight  = 500
	defaultTimeout = 30

	minDimension = 10
	maxDimension = 3000

	// Out-of-range dimensions reset to these large defaults, they are not
	// clamped to the nearest boundary.
	fallbackWidth  = 2500
	fallbackHeight = 1500
)

// RawRequest is a render request as it arrives from the caller, with numeric
// fields still in text form.
type RawRequest struct {
	URL       string `json:"url"`
	Width     string `json:"width"`
	Height    string `json:"height"`
	FilePath  string `json:"filePath"`
	Timeout   string `json:"timeout"`
	RenderKey string `json:"renderKey"`
	Domain    string `json:"domain"`
	Timezone  string `json:"timezone"`
	Encoding  string `json:"encoding"`
	JSONData  string `json:"jsonData"`
}

// Tag describes a script or style tag to inject after navigation, either by
// URL or inline content.
type Tag struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// Viewport overrides the request width/height for page emulation.
type Viewport struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// LaunchOverrides is the caller-controllable subset of launch configuration.
// Only named fields are accepted; unknown keys fail validation.
type LaunchOverrides struct {
	Args     []string `json:"args,omitempty"`
	Headless *bool    `json:"headless,omitempty"`
}

// PDFOptions are caller-supplied capture options for PDF output.
type PDFOptions struct {
	Landscape       *bool    `json:"landscape,omitempty"`
	PrintBackground *bool    `json:"printBackground,omitempty"`
	PaperWidth      *float64 `json:"paperWidth,omitempty"`
	PaperHeight     *float64 `json:"paperHeight,omitempty"`
	Scale           *float64 `json:"scale,omitempty"`
}

// Overrides is the decoded jsonData structure. After validation it is always
// concrete, never absent.
type Overrides struct {
	LaunchOptions            *LaunchOverrides  `json:"launchOptions,omitempty"`
	Viewport                 *Viewport         `json:"viewport,omitempty"`
	EmulateMedia             string            `json:"emulateMedia,omitempty"`
	DefaultNavigationTimeout int               `json:"defaultNavigationTimeout,omitempty"` // milliseconds
	ExtraURLParams           map[string]string `json:"extraUrlParams,omitempty"`
	ScriptTags               []Tag             `json:"scriptTags,omitempty"`
	StyleTags                []Tag             `json:"styleTags,omitempty"`
	WaitFor                  string            `json:"waitFor,omitempty"`
	PDF                      *PDFOptions       `json:"pdfOptions,omitempty"`
}

// Request is a normalized render request.
type Request struct {
	URL       string
	Width     int
	Height    int
	FilePath  string
	Timeout   int // seconds
	RenderKey string
	Domain    string
	Timezone  string
	Encoding  string
	Overrides Overrides
}

// Result is the outcome of a successful render call.
type Result struct {
	FilePath string `json:"filePath"`
}

// ValidateOptions normalizes a raw request. It has no side effects; no engine
// interaction happens before it succeeds.
func ValidateOptions(raw RawRequest) (*Request, error) {
	width := parsePositiveInt(raw.Width, defaultWidth)
	if width < minDimension || width > maxDimension {
		width = fallbackWidth
	}

	height := parsePositiveInt(raw.Height, defaultHeight)
	if height < minDimension || height > maxDimension {
		height = fallbackHeight
	}

	timeout := parsePositiveInt(raw.Timeout, defaultTimeout)

	encoding := raw.Encoding
	if encoding == "" {
		encoding = EncodingPNG
	}
	switch encoding {
	case EncodingPNG, EncodingJPEG, EncodingPDF:
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrBadRequest, raw.Encoding)
	}

	var overrides Overrides
	if strings.TrimSpace(raw.JSONData) != "" {
		dec := json.NewDecoder(strings.NewReader(raw.JSONData))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&overrides); err != nil {
			return nil, fmt.Errorf("%w: invalid jsonData: %v", ErrBadRequest, err)
		}
	}

	return &Request{
		URL:       raw.URL,
		Width:     width,
		Height:    height,
		FilePath:  raw.FilePath,
		Timeout:   timeout,
		RenderKey: raw.RenderKey,
		Domain:    raw.Domain,
		Timezone:  raw.Timezone,
		Encoding:  encoding,
		Overrides: overrides,
	}, nil
}

func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
