package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.ImportHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EnrichHost)
	assert.NotEmpty(t, cfg.ImportModel)
	assert.Zero(t, cfg.CallTimeout, "no per-call timeout by default")
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://example.com:9100"),
		WithImportModel("gpt-4o-mini"),
		WithEnrichModel("gpt-4o"),
		WithCallTimeout(30*time.Second),
	)

	assert.Equal(t, "http://example.com:9100", cfg.ImportHost)
	assert.Equal(t, "http://example.com:9100", cfg.EnrichHost)
	assert.Equal(t, "gpt-4o-mini", cfg.ImportModel)
	assert.Equal(t, "gpt-4o", cfg.EnrichModel)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
}

func TestConfig_NormalizeAddsV1Suffix(t *testing.T) {
	cfg := NewConfig(WithImportHost("http://localhost:8080"))
	cfg.Normalize()

	assert.Equal(t, "http://localhost:8080/v1", cfg.ImportHost)
}

func TestConfig_NormalizeTrailingSlash(t *testing.T) {
	cfg := NewConfig(WithImportHost("http://localhost:8080/"))
	cfg.Normalize()

	assert.Equal(t, "http://localhost:8080/v1", cfg.ImportHost)
}

func TestConfig_NormalizeFillsEnrichFromImport(t *testing.T) {
	cfg := &Config{ImportHost: "http://localhost:8080", ImportModel: "m"}
	cfg.Normalize()

	assert.Equal(t, cfg.ImportHost, cfg.EnrichHost)
	assert.Equal(t, cfg.ImportModel, cfg.EnrichModel)
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	missing := &Config{ImportModel: "m"}
	assert.Error(t, missing.Validate())

	noModel := &Config{ImportHost: "http://localhost:8080"}
	assert.Error(t, noModel.Validate())

	negative := NewConfig(WithCallTimeout(-time.Second))
	assert.Error(t, negative.Validate())
}
