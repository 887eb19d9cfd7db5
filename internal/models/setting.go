package models

import (
	"time"

	"gorm.io/gorm"
)

// Setting categories match the console's settings tabs.
const (
	SettingCategoryGeneral       = "general"
	SettingCategoryNginx         = "nginx"
	SettingCategoryNotifications = "notifications"
	SettingCategorySecurity      = "security"
)

// KnownSettingCategory reports whether the category is one of the
// console's tabs.
func KnownSettingCategory(category string) bool {
	switch category {
	case SettingCategoryGeneral, SettingCategoryNginx, SettingCategoryNotifications, SettingCategorySecurity:
		return true
	}
	return false
}

// Setting is a key/value entry backing one of the console's settings tabs.
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex"`
	Value     string    `json:"value"`
	Category  string    `json:"category"`
	Type      string    `json:"type"` // "string", "bool", "int"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Setting) BeforeCreate(tx *gorm.DB) (err error) {
	if s.Category == "" {
		s.Category = SettingCategoryGeneral
	}
	return
}
