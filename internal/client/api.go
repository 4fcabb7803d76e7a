// internal/client/api.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nlquery-gateway/internal/models"
)

const defaultFallback = "Query failed. Please try again."

// Client is a typed caller for the query gateway. Failures always surface as
// decoded *QueryError values ready for display and recovery resolution.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Query posts one question and returns the response or a decoded error.
func (c *Client) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, *QueryError) {
	body, err := json.Marshal(req)
	if err != nil {
		qe := Decode(err, defaultFallback)
		return nil, &qe
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/query", bytes.NewReader(body))
	if err != nil {
		qe := Decode(err, defaultFallback)
		return nil, &qe
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		qe := Decode(err, defaultFallback)
		return nil, &qe
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil {
			apiErr.Message = defaultFallback
		}
		apiErr.Status = resp.StatusCode
		qe := Decode(apiErr, defaultFallback)
		return nil, &qe
	}

	var out models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		qe := Decode(err, defaultFallback)
		return nil, &qe
	}
	return &out, nil
}
