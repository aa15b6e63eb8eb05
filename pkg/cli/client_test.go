package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8080/")
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
	assert.NotNil(t, c.HTTPClient)
}

func TestClient_Do(t *testing.T) {
	var gotPath, gotQuery, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Do(http.MethodPost, "/generate", url.Values{"a": {"1"}}, map[string]int{"rows": 5})
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/v1/generate", gotPath)
	assert.Equal(t, "a=1", gotQuery)
	assert.Equal(t, "application/json", gotType)
	assert.InDelta(t, 5.0, gotBody["rows"], 0)
}

func TestClient_DoRaw(t *testing.T) {
	var gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).DoRaw(http.MethodPost, "/ingest", nil, strings.NewReader("a,b\n1,2\n"), "text/csv")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "text/csv", gotType)
	assert.Equal(t, "a,b\n1,2\n", gotBody)
}

func TestClient_DoUnreachable(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1").Do(http.MethodGet, "/overview", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute request")
}

func TestCheckError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantCode   int
		wantSubstr string
	}{
		{"success", http.StatusOK, `{}`, false, 0, ""},
		{"structured", http.StatusNotFound, `{"code":404,"message":"table raw/x not found"}`, true, 404, "table raw/x not found"},
		{"with position", http.StatusBadRequest, `{"code":400,"message":"unexpected end","position":7}`, true, 400, "unexpected end (at position 7)"},
		{"raw body fallback", http.StatusBadGateway, `upstream down`, true, 502, "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
			err := CheckError(resp)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.HTTPStatus)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Contains(t, err.Error(), tt.wantSubstr)
			assert.Contains(t, err.Error(), "API error (HTTP")
		})
	}
}

func TestClient_ListFollowsPageTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_token") == "" {
			_, _ = io.WriteString(w, `{"data":[{"id":"1"},{"id":"2"}],"total":3,"next_page_token":"t2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"3"}],"total":3}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	all, err := c.list("/jobs", nil, 0, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	first, err := c.list("/jobs", nil, 2, false)
	require.NoError(t, err)
	assert.Len(t, first, 2)
}
