package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

// Client talks to the external item catalog service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) ListInReview(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := c.getJSON(ctx, "/api/items/inreview", &items, "list in-review items"); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	if err := c.getJSON(ctx, fmt.Sprintf("/api/items/%d", id), &item, "get item"); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status domain.ItemStatus) error {
	payload := map[string]string{"status": string(status)}
	return c.putJSON(ctx, fmt.Sprintf("/api/items/%d", id), payload, "update item status")
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+fmt.Sprintf("/api/items/%d", id), nil)
	if err != nil {
		return fmt.Errorf("create delete item request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTransport, "delete item", err)
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, "delete item")
}

// DownloadMedia fetches the raw media bytes through the catalog's download
// endpoint, which proxies the upload bucket.
func (c *Client) DownloadMedia(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	path := fmt.Sprintf("/api/items/download/%s/%s", loc.Bucket, loc.Key)
	return c.getBytes(ctx, path, "download media")
}
