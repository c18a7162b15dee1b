// Package encoder turns face images into encodings using an external
// face-embedding server.
package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/face-engine/internal/config"
	"github.com/kozaktomas/face-engine/internal/constants"
)

const defaultEncoderURL = "http://localhost:8000"

var (
	// ErrInvalidImage is returned for data that cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image data")

	// ErrUnexpectedDimension is returned when the server returns an encoding of the wrong length.
	ErrUnexpectedDimension = errors.New("unexpected encoding dimension")
)

// FaceDetection represents a single detected face
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float64 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse represents the response from the face embedding endpoint
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Client computes face encodings using the embedding server.
type Client struct {
	baseURL      string
	dim          int
	maxImageSize int
	client       *http.Client
	observe      func() func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithObserver registers a function called at the start of every request;
// the function it returns is called when the request finishes.
func WithObserver(observe func() func()) Option {
	return func(cl *Client) { cl.observe = observe }
}

// NewClient creates a new encoder client.
func NewClient(cfg *config.EncoderConfig, opts ...Option) *Client {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = defaultEncoderURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxSize := cfg.MaxImageSize
	if maxSize <= 0 {
		maxSize = constants.MaxImageSize
	}
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		dim:          cfg.Dim,
		maxImageSize: maxSize,
		client:       &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode returns the encoding of the first detected face in the image.
// A nil encoding with a nil error means no face was found.
func (c *Client) Encode(ctx context.Context, imageData []byte) ([]float64, error) {
	resp, err := c.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}
	if len(resp.Faces) == 0 {
		return nil, nil
	}

	face := resp.Faces[0]
	if len(face.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	if c.dim > 0 && len(face.Embedding) != c.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrUnexpectedDimension, c.dim, len(face.Embedding))
	}
	return face.Embedding, nil
}

// DetectFaces detects faces and computes their embeddings.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) (*FaceResponse, error) {
	prepared, err := PrepareImage(imageData, c.maxImageSize)
	if err != nil {
		return nil, err
	}

	if c.observe != nil {
		defer c.observe()()
	}

	body, err := c.postMultipartImage(ctx, "/embed/face", prepared)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &faceResp, nil
}

// postMultipartImage posts the image as the "file" form part with a Content-Type
// based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
