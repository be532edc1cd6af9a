package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/florapedia/api/internal/model"
)

// ErrNotFound marks a 404 from the catalog: the referenced plant or
// contribution does not exist. Anything else non-2xx is a transport-class
// failure and stays retryable.
var ErrNotFound = errors.New("not found")

// CatalogClient talks to the catalog API. Every call takes the bearer
// token explicitly; the client holds no credential state.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetPlantByID fetches the stored plant record, the original side of an
// update comparison.
func (c *CatalogClient) GetPlantByID(ctx context.Context, id, token string) (*model.Plant, error) {
	var plant model.Plant
	if err := c.get(ctx, "/api/plants/detail/"+id, token, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// GetContributionByID fetches a contribution, the proposed side.
func (c *CatalogClient) GetContributionByID(ctx context.Context, id, token string) (*model.Contribution, error) {
	var contribution model.Contribution
	if err := c.get(ctx, "/api/contributes/detail/"+id, token, &contribution); err != nil {
		return nil, err
	}
	return &contribution, nil
}

type moderateRequest struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Moderate applies an approve/reject decision and returns the updated
// contribution as the server recorded it. Satisfies review.Moderator.
func (c *CatalogClient) Moderate(ctx context.Context, id, action, message, token string) (*model.Contribution, error) {
	reqBody, err := json.Marshal(moderateRequest{Action: action, Message: message})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/api/contributes/moderate/"+id, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var contribution model.Contribution
	if err := json.NewDecoder(resp.Body).Decode(&contribution); err != nil {
		return nil, err
	}
	return &contribution, nil
}

func (c *CatalogClient) get(ctx context.Context, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("catalog API returned status %d: %s", resp.StatusCode, string(body))
}
