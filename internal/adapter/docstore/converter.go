package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"textmining/worker/internal/mining"
)

// Converter calls the external document conversion service that extracts
// plain text out of binary formats.
type Converter struct {
	baseURL    string
	httpClient *http.Client
}

func NewConverter(baseURL string) *Converter {
	return &Converter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Converter) Convert(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: convert %s: %v", mining.ErrExternalService, filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnsupportedMediaType {
		return "", fmt.Errorf("%w: %s", mining.ErrUnsupportedFormat, filename)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: convert %s: unexpected status %d", mining.ErrExternalService, filename, resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: convert %s: decode response: %v", mining.ErrExternalService, filename, err)
	}
	return result.Text, nil
}
