package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
)

// Client represents an HTTP client for the fixture matching API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithTimeout creates a new API client with a custom timeout
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	client := NewClient(baseURL)
	client.httpClient.Timeout = timeout
	return client
}

// APIError represents an error from the API
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// ParseRequest asks the server to classify and extract one message
type ParseRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Persist bool   `json:"persist"`
}

// ParseResponse is the server's parse-and-match summary
type ParseResponse struct {
	Label            string            `json:"label"`
	LabelConfidence  float64           `json:"label_confidence"`
	GateDecision     string            `json:"gate_decision"`
	VesselsFound     int               `json:"vessels_found"`
	CargosFound      int               `json:"cargos_found"`
	TotalMatches     int               `json:"total_matches"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	Matches          []matching.Result `json:"matches"`
}

// RunMatchesRequest carries optional criteria overrides for a matching run
type RunMatchesRequest struct {
	Criteria *matching.Criteria `json:"criteria,omitempty"`
	Force    bool               `json:"force,omitempty"`
}

// RunMatchesResponse summarizes a matching run
type RunMatchesResponse struct {
	VesselCount      int               `json:"vessel_count"`
	CargoCount       int               `json:"cargo_count"`
	TotalMatches     int               `json:"total_matches"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	Matches          []database.Match  `json:"matches"`
}

// RetrainResponse reports a classifier retraining run
type RetrainResponse struct {
	TrainedOn      int `json:"trained_on"`
	VocabularySize int `json:"vocabulary_size"`
}

// doRequest performs an HTTP request and handles errors
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()

		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			apiErr = APIError{
				Code:    resp.StatusCode,
				Message: resp.Status,
			}
		}
		return nil, &apiErr
	}

	return resp, nil
}

func decodeInto[T any](resp *http.Response) (*T, error) {
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// HealthCheck checks if the API server is healthy
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// GetVessels returns all vessels
func (c *Client) GetVessels() ([]database.Vessel, error) {
	resp, err := c.doRequest("GET", "/api/vessels", nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeInto[[]database.Vessel](resp)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetVessel returns a specific vessel by ID
func (c *Client) GetVessel(id int) (*database.Vessel, error) {
	resp, err := c.doRequest("GET", "/api/vessels/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Vessel](resp)
}

// CreateVessel creates a new vessel
func (c *Client) CreateVessel(vessel *database.Vessel) (*database.Vessel, error) {
	resp, err := c.doRequest("POST", "/api/vessels", vessel)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Vessel](resp)
}

// UpdateVessel updates a vessel
func (c *Client) UpdateVessel(id int, vessel *database.Vessel) (*database.Vessel, error) {
	resp, err := c.doRequest("PUT", "/api/vessels/"+strconv.Itoa(id), vessel)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Vessel](resp)
}

// DeleteVessel deletes a vessel
func (c *Client) DeleteVessel(id int) error {
	resp, err := c.doRequest("DELETE", "/api/vessels/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// GetCargos returns all cargos
func (c *Client) GetCargos() ([]database.Cargo, error) {
	resp, err := c.doRequest("GET", "/api/cargos", nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeInto[[]database.Cargo](resp)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetCargo returns a specific cargo by ID
func (c *Client) GetCargo(id int) (*database.Cargo, error) {
	resp, err := c.doRequest("GET", "/api/cargos/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Cargo](resp)
}

// CreateCargo creates a new cargo
func (c *Client) CreateCargo(cargo *database.Cargo) (*database.Cargo, error) {
	resp, err := c.doRequest("POST", "/api/cargos", cargo)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Cargo](resp)
}

// UpdateCargo updates a cargo
func (c *Client) UpdateCargo(id int, cargo *database.Cargo) (*database.Cargo, error) {
	resp, err := c.doRequest("PUT", "/api/cargos/"+strconv.Itoa(id), cargo)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Cargo](resp)
}

// DeleteCargo deletes a cargo
func (c *Client) DeleteCargo(id int) error {
	resp, err := c.doRequest("DELETE", "/api/cargos/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// GetPorts returns the port gazetteer
func (c *Client) GetPorts() ([]database.Port, error) {
	resp, err := c.doRequest("GET", "/api/ports", nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeInto[[]database.Port](resp)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetMatches returns all stored matches
func (c *Client) GetMatches() ([]database.Match, error) {
	resp, err := c.doRequest("GET", "/api/matches", nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeInto[[]database.Match](resp)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetMatch returns a specific match by ID
func (c *Client) GetMatch(id int) (*database.Match, error) {
	resp, err := c.doRequest("GET", "/api/matches/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Match](resp)
}

// RunMatches triggers a matching run over all available records
func (c *Client) RunMatches(req *RunMatchesRequest) (*RunMatchesResponse, error) {
	resp, err := c.doRequest("POST", "/api/matches/run", req)
	if err != nil {
		return nil, err
	}
	return decodeInto[RunMatchesResponse](resp)
}

// AcceptMatch accepts a proposed match, fixing vessel and cargo
func (c *Client) AcceptMatch(id int) (*database.Match, error) {
	resp, err := c.doRequest("POST", "/api/matches/"+strconv.Itoa(id)+"/accept", nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Match](resp)
}

// RejectMatch rejects a proposed match
func (c *Client) RejectMatch(id int) (*database.Match, error) {
	resp, err := c.doRequest("POST", "/api/matches/"+strconv.Itoa(id)+"/reject", nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[database.Match](resp)
}

// Parse submits raw text for classification and extraction
func (c *Client) Parse(req *ParseRequest) (*ParseResponse, error) {
	resp, err := c.doRequest("POST", "/api/parse", req)
	if err != nil {
		return nil, err
	}
	return decodeInto[ParseResponse](resp)
}

// Retrain rebuilds the classifier model from the labeled email corpus
func (c *Client) Retrain() (*RetrainResponse, error) {
	resp, err := c.doRequest("POST", "/api/classifier/retrain", nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[RetrainResponse](resp)
}
