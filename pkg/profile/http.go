package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPStore fetches profiles from the profile microservice.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPStore) { s.client = client }
}

// NewHTTPStore creates a store backed by the profile service at baseURL.
func NewHTTPStore(baseURL string, opts ...HTTPOption) *HTTPStore {
	s := &HTTPStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store. A 404 from the service maps to ErrNotFound.
func (s *HTTPStore) Get(ctx context.Context, userID string) (*Record, error) {
	endpoint := fmt.Sprintf("%s/api/profile/%s", s.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("profile service returned status %d", resp.StatusCode)
	}

	var record Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if record.UserID == "" {
		record.UserID = userID
	}
	return &record, nil
}

// Compile-time interface check.
var _ Store = (*HTTPStore)(nil)
