package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, 3, cfg.Listing.CoursesPageSize)
	assert.Equal(t, 5, cfg.Listing.EnrollmentsPageSize)
	assert.Equal(t, 3*time.Second, cfg.Listing.NoticeTTL)
	assert.Equal(t, time.Duration(0), cfg.Remote.Timeout)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.False(t, cfg.Audit.Enabled)
}

func TestOverridesAreNormalised(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("API_BASE_URL", "http://api.local/")
	v.Set("COURSES_PAGE_SIZE", -1)
	v.Set("SESSION_STORE", "REDIS")
	v.Set("NOTICE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, "http://api.local", cfg.Remote.BaseURL)
	assert.Equal(t, 3, cfg.Listing.CoursesPageSize)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, 3*time.Second, cfg.Listing.NoticeTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
