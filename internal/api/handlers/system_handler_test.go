package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
	"github.com/rjsears/n8n-nginx/backend/internal/nginx"
)

func TestFormatBytes(t *testing.T) {
	cases := map[uint64]string{
		0:                 "0 B",
		512:               "512 B",
		1024:              "1.0 KiB",
		1536:              "1.5 KiB",
		1048576:           "1.0 MiB",
		5 * 1073741824:    "5.0 GiB",
		1099511627776 * 2: "2.0 TiB",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBytes(in))
	}
}

func TestFormatUptime(t *testing.T) {
	cases := map[time.Duration]string{
		5 * time.Second:                    "5s",
		3 * time.Minute:                    "3m 0s",
		90 * time.Second:                   "1m 30s",
		2 * time.Hour:                      "2h 0m",
		26*time.Hour + 14*time.Minute:      "1d 2h 14m",
		73*time.Hour + 59*time.Minute:      "3d 1h 59m",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatUptime(in))
	}
}

func TestSystemHandler_Status(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupHandlerDB(t)
	require.NoError(t, db.Create(&models.IPRange{CIDR: "10.0.0.0/8"}).Error)
	require.NoError(t, db.Create(&models.Notification{Title: "t", Message: "m"}).Error)

	manager := nginx.NewManager(&stubReloader{}, db, t.TempDir())
	handler := NewSystemHandler(db, manager)

	router := gin.New()
	router.GET("/api/v1/system/status", handler.Status)

	w := doJSON(t, router, http.MethodGet, "/api/v1/system/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, float64(1), status["ip_ranges"])
	assert.Equal(t, float64(1), status["unread_notifications"])
	assert.Equal(t, true, status["nginx_ok"])
	assert.NotEmpty(t, status["uptime"])
	assert.NotEmpty(t, status["memory"])
}

func TestSystemHandler_MyIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewSystemHandler(setupHandlerDB(t), nil)
	router := gin.New()
	router.GET("/api/v1/system/my-ip", handler.MyIP)

	w := doJSON(t, router, http.MethodGet, "/api/v1/system/my-ip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ip")
}
