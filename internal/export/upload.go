package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Uploader stores an exported image on a remote backend.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte, saveAsNew bool) error
}

// HTTPUploader posts the image as a multipart form with the fields image and
// save_as_new.
type HTTPUploader struct {
	URL   string
	Token string

	client *http.Client
}

// NewHTTPUploader creates an uploader for url. A nil client gets one with the
// given timeout.
func NewHTTPUploader(url, token string, client *http.Client, timeout time.Duration) *HTTPUploader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPUploader{URL: url, Token: token, client: client}
}

func (u *HTTPUploader) Upload(ctx context.Context, filename string, data []byte, saveAsNew bool) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.WriteField("save_as_new", strconv.FormatBool(saveAsNew)); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upload rejected (status %d): %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
