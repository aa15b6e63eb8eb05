package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response from the lake API.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.HTTPStatus, e.Message)
}

// Client calls the lake's /v1 API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Do sends a request to /v1 + path. A non-nil body is sent as JSON.
func (c *Client) Do(method, path string, query url.Values, body any) (*http.Response, error) {
	var rd io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.DoRaw(method, path, query, rd, contentType)
}

// DoRaw sends body as-is with the given content type.
func (c *Client) DoRaw(method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	u := c.BaseURL + "/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, body) //nolint:noctx // client timeout bounds the call
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// CheckError returns an *APIError for non-2xx responses. The body is
// consumed only on error.
func CheckError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := ReadBody(resp)
	apiErr := &APIError{HTTPStatus: resp.StatusCode, Code: resp.StatusCode, Message: string(body)}
	var structured struct {
		Code     int    `json:"code"`
		Message  string `json:"message"`
		Position *int   `json:"position"`
	}
	if json.Unmarshal(body, &structured) == nil && structured.Message != "" {
		apiErr.Code = structured.Code
		apiErr.Message = structured.Message
		if structured.Position != nil {
			apiErr.Message = fmt.Sprintf("%s (at position %d)", structured.Message, *structured.Position)
		}
	}
	return apiErr
}

// ReadBody reads and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// call sends a request and decodes a successful JSON response into out.
func (c *Client) call(method, path string, query url.Values, body, out any) error {
	resp, err := c.Do(method, path, query, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if err := CheckError(resp); err != nil {
		return err
	}
	data, err := ReadBody(resp)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// listPage is one page of a /v1 list endpoint.
type listPage struct {
	Data          []map[string]any `json:"data"`
	Total         int64            `json:"total"`
	NextPageToken string           `json:"next_page_token"`
}

// list fetches a list endpoint, following page tokens when all is set.
func (c *Client) list(path string, query url.Values, maxResults int, all bool) ([]map[string]any, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if maxResults > 0 {
		q.Set("max_results", fmt.Sprint(maxResults))
	}
	var out []map[string]any
	for {
		var page listPage
		if err := c.call(http.MethodGet, path, q, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if !all || page.NextPageToken == "" {
			return out, nil
		}
		q.Set("page_token", page.NextPageToken)
	}
}
