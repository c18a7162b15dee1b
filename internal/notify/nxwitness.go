// Package notify sends best-effort NX Witness bookmarks for recognized faces.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kozaktomas/face-engine/internal/config"
	"github.com/kozaktomas/face-engine/internal/constants"
)

// ErrNoDevice is returned when no NX device is assigned to the camera.
var ErrNoDevice = errors.New("no NX device configured")

// Bookmark is the NX Witness bookmark payload
type Bookmark struct {
	ServerID       string   `json:"serverId"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	StartTimeMs    int64    `json:"startTimeMs"`
	DurationMs     int64    `json:"durationMs"`
	Tags           []string `json:"tags"`
	CreationTimeMs int64    `json:"creationTimeMs"`
}

// NewBookmark builds the bookmark for a recognized person at t.
func NewBookmark(serverID, fullName string, t time.Time) Bookmark {
	ms := t.UnixMilli()
	return Bookmark{
		ServerID:       serverID,
		Name:           constants.BookmarkName,
		Description:    fullName,
		StartTimeMs:    ms,
		DurationMs:     constants.BookmarkDurationMs,
		Tags:           []string{constants.BookmarkTag},
		CreationTimeMs: ms,
	}
}

// Client posts bookmarks to an NX Witness server.
type Client struct {
	cfg     *config.NXWitnessConfig
	client  *http.Client
	retries int
	backoff time.Duration
	now     func() time.Time
}

// NewClient creates a client with the configured timeout. Redirects are not
// followed automatically, a single 307 is re-posted by Send.
func NewClient(cfg *config.NXWitnessConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // NX servers commonly use self-signed certificates
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		retries: retries,
		backoff: 500 * time.Millisecond,
		now:     time.Now,
	}
}

// Send creates a bookmark for fullName on the device assigned to cameraID.
// It makes up to Retries attempts.
func (c *Client) Send(ctx context.Context, cameraID, fullName string) error {
	deviceID := c.cfg.DeviceFor(cameraID)
	if deviceID == "" {
		return ErrNoDevice
	}

	body, err := json.Marshal(NewBookmark(c.cfg.ServerID, fullName, c.now()))
	if err != nil {
		return fmt.Errorf("marshal bookmark: %w", err)
	}
	url := c.cfg.BookmarkURL(deviceID)

	var lastErr error
	for attempt := range c.retries {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("bookmark cancelled after %d attempts: %w", attempt, errors.Join(lastErr, ctx.Err()))
			case <-time.After(c.backoff):
			}
		}
		if lastErr = c.post(ctx, url, body); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("bookmark failed after %d attempts: %w", c.retries, lastErr)
}

// post sends the bookmark once, re-posting to Location on a 307.
func (c *Client) post(ctx context.Context, url string, body []byte) error {
	resp, err := c.do(ctx, url, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusTemporaryRedirect {
		location, err := resp.Location()
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("redirect without location: %w", err)
		}
		if resp, err = c.do(ctx, location.String(), body); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("NX Witness error (status %d): %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.User != "" {
		req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	}

	resp, err := c.client.Do(req) //nolint:gosec // URL from trusted server config
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
