package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
)

func testConfig(baseURL string) *common.Config {
	return &common.Config{
		Server:     common.ServerConfig{APIKey: "k", MaxFileSize: constants.MaxFileSizeDefault},
		Database:   common.DatabaseConfig{Driver: "sqlite", URL: "file::memory:?cache=shared"},
		OCR:        common.OCRConfig{DirectEngines: []string{constants.EngineNative}},
		LLM:        common.LLMConfig{Provider: "openai", BaseURL: baseURL, Model: "m", MaxNewTokens: 64},
		Validation: common.ValidationConfig{Strictness: "structural"},
	}
}

func TestBuild_LoadsModelAndDatabase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"m"}]}`))
	}))
	defer srv.Close()

	rt, err := Build(context.Background(), testConfig(srv.URL), Options{WithDatabase: true}, slog.Default())
	require.NoError(t, err)
	defer rt.Close()

	assert.True(t, rt.Invoker.Loaded())
	assert.NotNil(t, rt.Jobs)
	assert.NotNil(t, rt.Exporter)
	assert.Nil(t, rt.Cache)
	require.NoError(t, rt.PingDatabase(context.Background()))

	deps := rt.ServerDeps()
	assert.NotNil(t, deps.Jobs)
	assert.True(t, deps.Health.ModelLoaded())
	assert.Equal(t, "m", deps.Health.ModelName())
}

func TestBuild_ModelUnavailableIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rt, err := Build(context.Background(), testConfig(srv.URL), Options{}, nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.False(t, rt.Invoker.Loaded())
	assert.Nil(t, rt.DB)
	assert.Error(t, rt.PingDatabase(context.Background()))

	res := rt.Processor.ProcessText(context.Background(), "statement", "")
	assert.False(t, res.Success)
	assert.Equal(t, common.KindModelNotLoaded, res.Error)
}

func TestNewLogger(t *testing.T) {
	l := NewLogger("debug", "text")
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
	l = NewLogger("bogus", "json")
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}
