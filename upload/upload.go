package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Nebual/ncscreenier/imaging"
)

// Client uploads encoded screenshots to a single preconfigured endpoint.
// Each Upload call is one independent attempt; callers that want retries
// re-invoke it.
type Client struct {
	endpoint string
	account  string
	http     *http.Client
}

// New creates an upload client for the given endpoint and account folder.
// The transport timeout bounds each individual attempt.
func New(endpoint, account string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		account:  account,
		http:     &http.Client{Timeout: timeout},
	}
}

// ShareURL returns the public URL a successfully uploaded file is served at.
func (c *Client) ShareURL(filename string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.account, filename)
}

// Upload POSTs the encoded image as a multipart form and returns the share
// URL on success. A non-200 response or transport error is returned as a
// failure; the server does not deduplicate, so repeating the call is safe.
func (c *Client) Upload(ctx context.Context, filename string, enc imaging.Encoded) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := fw.Write(enc.Bytes); err != nil {
		return "", fmt.Errorf("failed to build multipart form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build multipart form: %w", err)
	}

	postURL := fmt.Sprintf("%s/?folder_name=%s&file_name=%s",
		c.endpoint, url.QueryEscape(c.account), url.QueryEscape(filename))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload to %s failed: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload rejected: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	return c.ShareURL(filename), nil
}
