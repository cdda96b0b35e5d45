package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

func (c *Client) getJSON(ctx context.Context, path string, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTransport, operation, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, operation); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) getBytes(ctx context.Context, path string, operation string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransport, operation, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, operation); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransport, operation, err)
	}
	return body, nil
}

func (c *Client) putJSON(ctx context.Context, path string, payload any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTransport, operation, err)
	}
	defer resp.Body.Close()

	return c.checkStatus(resp, operation)
}

func (c *Client) checkStatus(resp *http.Response, operation string) error {
	if resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))
	if resp.StatusCode == http.StatusNotFound {
		return domain.WrapError(domain.ErrItemNotFound, operation, fmt.Errorf("%s: %s", resp.Status, msg))
	}
	if msg == "" {
		return domain.WrapError(domain.ErrTransport, operation, fmt.Errorf("%s", resp.Status))
	}
	return domain.WrapError(domain.ErrTransport, operation, fmt.Errorf("%s: %s", resp.Status, msg))
}
