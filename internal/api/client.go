// Package api is the transport adapter for the scoreboard server: typed
// wrappers over its HTTP contract. It carries no reconciliation logic.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one scoreboard server.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for baseURL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}
	return responseBody, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := c.makeRequest(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}
	_, err = c.makeRequest(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(payload))
	return err
}

func (c *Client) post(ctx context.Context, endpoint string) error {
	_, err := c.makeRequest(ctx, http.MethodPost, endpoint, "", nil)
	return err
}

// TimerAction names the server-side timer operations.
type TimerAction string

const (
	TimerStart      TimerAction = "start"
	TimerPause      TimerAction = "pause"
	TimerReset      TimerAction = "reset"
	TimerSecondHalf TimerAction = "secondHalf"
)

// Timer fires one of the timer endpoints. Fire-and-forget on the server
// side; the caller decides whether to reload afterwards.
func (c *Client) Timer(ctx context.Context, action TimerAction) error {
	return c.post(ctx, "/api/timer/"+string(action))
}

// SwapSides flips the displayed sides. Callers follow with a full reload.
func (c *Client) SwapSides(ctx context.Context) error {
	return c.post(ctx, "/api/swapSides")
}

// Export downloads the current snapshot as a JSON document.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodGet, "/api/export", "", nil)
}

// ExportFilename names an export the way the admin page does:
// scoreboard-state-<ISO8601 with ':' and '.' replaced by '-'>.json.
func ExportFilename(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "scoreboard-state-" + ts + ".json"
}

// Import uploads a snapshot file as multipart field "file", replacing the
// server state. Local state is untouched on failure.
func (c *Client) Import(ctx context.Context, filename string, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build import form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish import form: %w", err)
	}
	_, err = c.makeRequest(ctx, http.MethodPost, "/api/import", mw.FormDataContentType(), &buf)
	return err
}

// ListSaves returns the named persistence slots, newest first.
func (c *Client) ListSaves(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/api/saves", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// SaveSlot stores the current server state under a named slot. An empty name
// lets the server pick a timestamp name.
func (c *Client) SaveSlot(ctx context.Context, filename string) error {
	return c.postJSON(ctx, "/api/save", map[string]string{"filename": filename})
}

// LoadSlot replaces the server state from a named slot. Callers follow with
// a full reload.
func (c *Client) LoadSlot(ctx context.Context, filename string) error {
	return c.post(ctx, "/api/load?filename="+url.QueryEscape(filename))
}

// Sponsors lists the uploaded sponsor image names.
func (c *Client) Sponsors(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/api/sponsors", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Upload is one file in a multipart upload.
type Upload struct {
	Name   string
	Reader io.Reader
}

// UploadSponsors uploads sponsor images as multipart field "files".
func (c *Client) UploadSponsors(ctx context.Context, uploads []Upload) error {
	return c.uploadMultipart(ctx, "/api/sponsors/upload", "files", uploads)
}

// DeleteSponsor removes one sponsor image by name.
func (c *Client) DeleteSponsor(ctx context.Context, name string) error {
	return c.post(ctx, "/api/sponsors/delete?name="+url.QueryEscape(name))
}

// QR downloads the current QR image, if any.
func (c *Client) QR(ctx context.Context) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodGet, "/api/qr", "", nil)
}

// UploadQR replaces the QR image, multipart field "file".
func (c *Client) UploadQR(ctx context.Context, upload Upload) error {
	return c.uploadMultipart(ctx, "/api/qr/upload", "file", []Upload{upload})
}

func (c *Client) uploadMultipart(ctx context.Context, endpoint, field string, uploads []Upload) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, up := range uploads {
		part, err := mw.CreateFormFile(field, up.Name)
		if err != nil {
			return fmt.Errorf("failed to build upload form: %w", err)
		}
		if _, err := io.Copy(part, up.Reader); err != nil {
			return fmt.Errorf("failed to read upload %s: %w", up.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish upload form: %w", err)
	}
	_, err := c.makeRequest(ctx, http.MethodPost, endpoint, mw.FormDataContentType(), &buf)
	return err
}
