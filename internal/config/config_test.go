package config

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/ArowuTest/lucky-lottery/internal/rng"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_SSLMODE", "LOG_LEVEL", "STORE_DRIVER", "RANDOM_SOURCE", "MIN_LOTTERY_QUANTITY", "DRAW_MAX_ATTEMPTS"} {
		t.Setenv(k, "")
	}
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "postgres", c.StoreDriver)
	assert.Equal(t, "mixer", c.RandomSource)
	assert.Equal(t, uint128.From64(500000), c.MinQuantity)
	assert.Equal(t, 20000, c.DrawMaxAttempts)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("RANDOM_SOURCE", "csprng")
	t.Setenv("MIN_LOTTERY_QUANTITY", "340282366920938463463374607431768211455")
	t.Setenv("DRAW_MAX_ATTEMPTS", "100")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "memory", c.StoreDriver)
	assert.Equal(t, uint128.Max, c.MinQuantity)
	assert.Equal(t, 100, c.DrawMaxAttempts)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"MIN_LOTTERY_QUANTITY": "-5",
		"DRAW_MAX_ATTEMPTS":    "zero",
		"STORE_DRIVER":         "mongo",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	assert.Equal(t, logrus.InfoLevel, NewLogger("loud").GetLevel())
}

func TestNewRandomSource(t *testing.T) {
	src, err := NewRandomSource(&AppConfig{RandomSource: "mixer"})
	require.NoError(t, err)
	assert.IsType(t, &rng.Mixer{}, src)

	src, err = NewRandomSource(&AppConfig{RandomSource: "csprng"})
	require.NoError(t, err)
	assert.IsType(t, &rng.CSPRNG{}, src)

	_, err = NewRandomSource(&AppConfig{RandomSource: "dice"})
	assert.Error(t, err)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(&AppConfig{FrontendURL: "https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
