package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion-demo/internal/config"
	"medallion-demo/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		QueryTimeout:        config.DefaultQueryTimeout,
		PipelineParallelism: config.DefaultPipelineParallelism,
		RateLimitRPS:        100,
		RateLimitBurst:      200,
		CORSAllowedOrigins:  []string{"https://lake.example"},
	}
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), Deps{Cfg: cfg, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestLakeConfig(t *testing.T) {
	keyID, secret, endpoint, region := "k", "s", "s3.example.com", "eu-central"
	cfg := testConfig()
	cfg.S3KeyID, cfg.S3Secret, cfg.S3Endpoint, cfg.S3Region = &keyID, &secret, &endpoint, &region
	cfg.CatalogOwner = "data-team"
	cfg.CatalogTags = []string{"ecommerce"}

	lc, err := LakeConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, lc.Sources.S3)
	assert.Equal(t, "s3.example.com", lc.Sources.S3.Endpoint)
	assert.Equal(t, "data-team", lc.Metadata.Owner)
	assert.Equal(t, []string{"ecommerce"}, lc.Metadata.Tags)
	assert.Equal(t, "category", lc.Rules.Gold.Dimension)
}

func TestLakeConfig_RulesFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(good, []byte("fallback_rows: 10\ngold:\n  dimension: brand\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fallback_rows: -1\n"), 0o600))

	cfg := testConfig()
	cfg.RulesPath = good
	lc, err := LakeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 10, lc.Rules.FallbackRows)
	assert.Equal(t, "brand", lc.Rules.Gold.Dimension)
	assert.Equal(t, "selling_price_clean", lc.Rules.Gold.Measure)

	for _, path := range []string{bad, filepath.Join(dir, "missing.yaml")} {
		cfg.RulesPath = path
		_, err := LakeConfig(cfg)
		assert.Error(t, err, path)
	}
}

func TestNew_SeedsAndRestoresSources(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(orders, []byte("id,amount\n1,9.5\n2,3\n"), 0o600))

	cfg := testConfig()
	cfg.SeedSyntheticRows = 25
	cfg.SeedSeed = 7
	cfg.StartupSources = []string{orders, filepath.Join(dir, "missing.csv")}
	a := newApp(t, cfg)

	raw, err := a.Lake.Tables(domain.ZoneRaw)
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "orders", raw[0].Name)
	assert.Equal(t, 2, raw[0].Rows)
	assert.Equal(t, 25, raw[1].Rows)
}

func TestStartAndClose(t *testing.T) {
	a, err := New(context.Background(), Deps{Cfg: testConfig(), Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	assert.Empty(t, a.Scheduler.Schedules())
	require.NoError(t, a.Close())
}

func TestRouter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a := newApp(t, testConfig())
	srv := httptest.NewServer(a.Router(ctx))
	t.Cleanup(srv.Close)

	noRedirect := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"healthz", "/healthz", http.StatusOK, `"ok"`},
		{"root_redirects", "/", http.StatusFound, ""},
		{"api", "/v1/overview", http.StatusOK, `"catalog_entries"`},
		{"ui", "/ui", http.StatusOK, "Medallion Lake"},
		{"unknown", "/v2/overview", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := noRedirect.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.wantBody)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a := newApp(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/v1/query", nil)
	req.Header.Set("Origin", "https://lake.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.Router(ctx).ServeHTTP(rec, req)

	assert.Equal(t, "https://lake.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
