// Package webclient wraps the outbound HTTP client used against partner
// websites. Partner sites run on heterogeneous, often self-signed setups,
// so certificate verification is a configuration decision rather than a
// hardcoded default.
package webclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

type (
	Client struct {
		http *http.Client
	}

	Config struct {
		// Zero means the 10 second default.
		Timeout time.Duration

		// When false the client accepts any certificate chain the
		// partner site presents.
		VerifyCertificates bool
	}
)

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: !cfg.VerifyCertificates,
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Get issues a read against a partner endpoint. Some partner sites reject
// unknown agents, so requests present a browser user agent.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %s", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}

// PostForm issues a multipart form write against a partner endpoint.
func (c *Client) PostForm(ctx context.Context, url string, fields map[string]string) (*http.Response, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("error writing form field: %s", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("error closing form: %s", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("error building request: %s", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.http.Do(req)
}
