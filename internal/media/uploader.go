// internal/media/uploader.go
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"finvest-api/internal/config"
)

// Uploader stores a base64-encoded image in object storage and returns
// its public URL and storage identifier.
type Uploader interface {
	UploadBase64(ctx context.Context, name, data string) (url, publicID string, err error)
}

// Client uploads images to an HTTP object-storage API.
type Client struct {
	http   *resty.Client
	key    string
	folder string
}

// NewClient creates an upload client for the configured storage API.
func NewClient(cfg config.MediaConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15 * time.Second)
	return &Client{
		http:   httpClient,
		key:    cfg.UploadKey,
		folder: cfg.Folder,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// UploadBase64 sends a base64 image (with or without a data URI prefix)
// to the storage API.
func (c *Client) UploadBase64(ctx context.Context, name, data string) (string, string, error) {
	payload := data
	if !strings.HasPrefix(payload, "data:") {
		// Validate and normalize raw base64 into a data URI.
		if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
			return "", "", fmt.Errorf("invalid base64 image data: %w", err)
		}
		payload = "data:image/png;base64," + payload
	}

	var out uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"file":      payload,
			"folder":    c.folder,
			"public_id": name,
			"api_key":   c.key,
		}).
		SetResult(&out).
		Post("/upload")
	if err != nil {
		return "", "", fmt.Errorf("image upload failed: %w", err)
	}
	if resp.IsError() {
		return "", "", fmt.Errorf("image upload returned status %d", resp.StatusCode())
	}
	return out.SecureURL, out.PublicID, nil
}
