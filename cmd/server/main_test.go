package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"medallion-demo/internal/config"
)

func TestCurlHostForListenAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		listenAddr string
		want       string
	}{
		{name: "port only", listenAddr: ":8080", want: "localhost:8080"},
		{name: "explicit host", listenAddr: "10.0.0.5:9000", want: "10.0.0.5:9000"},
		{name: "all ipv4 interfaces", listenAddr: "0.0.0.0:8443", want: "localhost:8443"},
		{name: "all ipv6 interfaces", listenAddr: "[::]:8080", want: "localhost:8080"},
		{name: "ipv6 host kept", listenAddr: "[::1]:8080", want: "[::1]:8080"},
		{name: "surrounding spaces", listenAddr: "  :7070 ", want: "localhost:7070"},
		{name: "blank uses default port", listenAddr: " ", want: "localhost:8080"},
		{name: "no port returned as is", listenAddr: "lakehost", want: "lakehost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, curlHostForListenAddr(tt.listenAddr))
		})
	}
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://localhost:8080", baseURL(&config.Config{ListenAddr: ":8080"}))
	assert.Equal(t, "https://lake.internal:443", baseURL(&config.Config{
		ListenAddr:  "lake.internal:443",
		TLSCertFile: "cert.pem",
		TLSKeyFile:  "key.pem",
	}))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	dev := newLogger(&config.Config{LogLevel: "warn"})
	_, isText := dev.Handler().(*slog.TextHandler)
	assert.True(t, isText)
	assert.False(t, dev.Enabled(context.Background(), slog.LevelInfo))

	prod := newLogger(&config.Config{Env: "production"})
	_, isJSON := prod.Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)
}
