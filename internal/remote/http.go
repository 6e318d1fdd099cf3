package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mvolkova/classkeeper/internal/models"
)

var ErrServerStatus = errors.New("unexpected server status")

// HTTPClient talks JSON to the hosted REST API. Entity sets live under
// /{kind}s, consent under /consent/{userID}.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient builds a client for the API at baseURL. token may be empty
// for anonymous endpoints; timeout bounds each request.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s -> %d", ErrServerStatus, method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func fetchSet[T any](ctx context.Context, c *HTTPClient, path string) ([]models.Cached[T], error) {
	var items []models.Cached[T]
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) FetchCourses(ctx context.Context) ([]models.Cached[models.Course], error) {
	return fetchSet[models.Course](ctx, c, "/courses")
}

func (c *HTTPClient) FetchAssignments(ctx context.Context) ([]models.Cached[models.Assignment], error) {
	return fetchSet[models.Assignment](ctx, c, "/assignments")
}

func (c *HTTPClient) FetchGrades(ctx context.Context) ([]models.Cached[models.Grade], error) {
	return fetchSet[models.Grade](ctx, c, "/grades")
}

func (c *HTTPClient) FetchProfile(ctx context.Context) (*models.Cached[models.Profile], error) {
	var p models.Cached[models.Profile]
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) FetchConversations(ctx context.Context) ([]models.Cached[models.Conversation], error) {
	return fetchSet[models.Conversation](ctx, c, "/conversations")
}

func (c *HTTPClient) Update(ctx context.Context, kind models.EntityKind, id uuid.UUID, payload any) error {
	// the profile is a singleton resource, same path for fetch and push
	path := fmt.Sprintf("/%ss/%s", kind, id)
	if kind == models.KindProfile {
		path = "/profile"
	}
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

func (c *HTTPClient) UpdateConsent(ctx context.Context, userID string, granted bool) error {
	body := map[string]any{"granted": granted}
	return c.do(ctx, http.MethodPut, "/consent/"+userID, body, nil)
}
