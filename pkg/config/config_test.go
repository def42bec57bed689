package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	t.Setenv("REPORTS_CACHE_TTL", "90s")
	t.Setenv("REPORTS_STUDENT_CONCURRENCY", "0")
	t.Setenv("REPORTS_ACADEMIC_YEAR", "2021")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 90*time.Second, cfg.Reports.CacheTTL)
	assert.Equal(t, 4, cfg.Reports.StudentConcurrency)
	assert.Equal(t, 2021, cfg.Reports.AcademicYear)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "resultify.notifications", cfg.Notifications.Subject)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}
