package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "survey-insights", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, "international", cfg.Report.Classification)
	assert.Equal(t, 9, cfg.Report.GroupLimit)
	assert.Equal(t, "survey_responses", cfg.Report.Table)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("REPORT_CLASSIFICATION", "all")
	t.Setenv("REPORT_GROUP_LIMIT", "5")
	t.Setenv("DB_QUERY_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.App.Environment)
	assert.Equal(t, "all", cfg.Report.Classification)
	assert.Equal(t, 5, cfg.Report.GroupLimit)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REPORT_GROUP_LIMIT", "many")
	t.Setenv("APP_DEBUG", "not-a-bool")
	t.Setenv("DB_CONN_MAX_LIFETIME", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Report.GroupLimit)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestValidate_ProductionRequiresDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate_GroupLimitMustBePositive(t *testing.T) {
	t.Setenv("REPORT_GROUP_LIMIT", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_GROUP_LIMIT")
}

func TestValidate_RedisURLRequiredWhenEnabled(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}
