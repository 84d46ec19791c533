package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"catsync/pkg/api"
)

// SyncClient is a thin HTTP client for the controller API.
type SyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// APIError carries the status code and message of a failed API call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

func newClient() (*SyncClient, error) {
	token := viper.GetString("token")
	if token == "" {
		return nil, fmt.Errorf("no API token set (use --token, CATSYNC_TOKEN or the config file)")
	}
	return &SyncClient{
		BaseURL:    viper.GetString("url"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *SyncClient) do(method, path string, in, out interface{}) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *SyncClient) TriggerSync(req api.TriggerSyncRequest) (*api.JobResponse, error) {
	var job api.JobResponse
	if err := c.do(http.MethodPost, "/sync/trigger", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *SyncClient) ImportProducts(req api.ImportProductsRequest) (*api.JobResponse, error) {
	var job api.JobResponse
	if err := c.do(http.MethodPost, "/sync/products", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *SyncClient) CancelSync() (*api.CancelSyncResponse, error) {
	var resp api.CancelSyncResponse
	if err := c.do(http.MethodPost, "/sync/cancel", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *SyncClient) GetStatus() (*api.JobResponse, error) {
	var job api.JobResponse
	if err := c.do(http.MethodGet, "/sync/status", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *SyncClient) GetJob(id string) (*api.JobResponse, error) {
	var job api.JobResponse
	if err := c.do(http.MethodGet, "/sync/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *SyncClient) ListJobs(status string, limit, offset int) (*api.ListJobsResponse, error) {
	var resp api.ListJobsResponse
	if err := c.do(http.MethodGet, "/sync/jobs"+listQuery(status, limit, offset), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *SyncClient) ListMappings(status string, limit, offset int) (*api.ListMappingsResponse, error) {
	var resp api.ListMappingsResponse
	if err := c.do(http.MethodGet, "/mappings"+listQuery(status, limit, offset), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *SyncClient) GetMappingStats() (*api.ImportStatisticsResponse, error) {
	var resp api.ImportStatisticsResponse
	if err := c.do(http.MethodGet, "/mappings/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *SyncClient) GetSettings() (*api.SettingsResponse, error) {
	var resp api.SettingsResponse
	if err := c.do(http.MethodGet, "/sync/settings", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *SyncClient) UpdateSettings(req api.UpdateSettingsRequest) (*api.SettingsResponse, error) {
	var resp api.SettingsResponse
	if err := c.do(http.MethodPut, "/sync/settings", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *SyncClient) CreateTenant(req api.CreateTenantRequest) (*api.CreateTenantResponse, error) {
	var resp api.CreateTenantResponse
	if err := c.do(http.MethodPost, "/tenants", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func listQuery(status string, limit, offset int) string {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
