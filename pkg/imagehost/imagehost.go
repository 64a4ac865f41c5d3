// Package imagehost stores task images with a third-party hosting service and
// hands back their public URLs.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("image hosting is not configured")

// Uploader stores one image and returns its absolute URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}

// CloudinaryConfig holds the settings for unsigned uploads.
type CloudinaryConfig struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	Folder       string
	Timeout      time.Duration
}

// Cloudinary uploads through the Cloudinary upload API using an unsigned preset.
type Cloudinary struct {
	client *resty.Client
	cfg    CloudinaryConfig
}

func NewCloudinary(cfg CloudinaryConfig) *Cloudinary {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Cloudinary{client: client, cfg: cfg}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	// public ids must be unique; the original name only survives as a suffix hint
	publicID := uuid.NewString()
	if base := strings.TrimSuffix(path.Base(filename), path.Ext(filename)); base != "" && base != "." && base != "/" {
		publicID += "-" + base
	}
	form := map[string]string{
		"upload_preset": c.cfg.UploadPreset,
		"public_id":     publicID,
	}
	if c.cfg.Folder != "" {
		form["folder"] = c.cfg.Folder
	}

	var out uploadResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, r).
		SetFormData(form).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/v1_1/%s/image/upload", c.cfg.CloudName))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if resp.IsError() {
		msg := out.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("upload %s: %s", filename, msg)
	}

	url := out.SecureURL
	if url == "" {
		url = out.URL
	}
	if !strings.HasPrefix(url, "http") {
		return "", fmt.Errorf("upload %s: response carried no usable url", filename)
	}
	return url, nil
}
