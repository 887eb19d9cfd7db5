package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
)

// SettingsHandler backs the console's settings tabs with flat key/value
// rows grouped by category.
type SettingsHandler struct {
	DB *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{DB: db}
}

// GetSettings returns settings as a key/value map, optionally restricted to
// one tab via ?category=.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	query := h.DB
	if category := c.Query("category"); category != "" {
		if !models.KnownSettingCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown settings category: " + category})
			return
		}
		query = query.Where("category = ?", category)
	}

	var settings []models.Setting
	if err := query.Find(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	settingsMap := make(map[string]string, len(settings))
	for _, s := range settings {
		settingsMap[s.Key] = s.Value
	}

	c.JSON(http.StatusOK, settingsMap)
}

type UpdateSettingRequest struct {
	Key      string `json:"key" binding:"required"`
	Value    string `json:"value" binding:"required"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

// UpdateSetting upserts one setting row, keyed by Key. An omitted category
// leaves an existing row's tab untouched; new rows land on the general tab.
func (h *SettingsHandler) UpdateSetting(c *gin.Context) {
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Category != "" && !models.KnownSettingCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown settings category: " + req.Category})
		return
	}

	setting := models.Setting{
		Key:      req.Key,
		Value:    req.Value,
		Category: req.Category,
		Type:     req.Type,
	}

	if err := h.DB.Where(models.Setting{Key: req.Key}).Assign(setting).FirstOrCreate(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting"})
		return
	}

	c.JSON(http.StatusOK, setting)
}
