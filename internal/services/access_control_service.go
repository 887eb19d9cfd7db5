package services

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidCIDR        = errors.New("invalid IP address or CIDR")
	ErrInvalidAccessLevel = errors.New("invalid access level")
	ErrDuplicateRange     = errors.New("IP range already exists")
	ErrRangeNotFound      = errors.New("IP range not found")
)

// AccessControlService maintains the ordered set of network-range access
// rules. Every mutation round-trips through the database before the caller
// sees the updated set; the generated nginx include file (written by the
// nginx manager) is the artifact Enabled and LastUpdated are derived from.
type AccessControlService struct {
	db      *gorm.DB
	aclPath string
}

func NewAccessControlService(db *gorm.DB, aclPath string) *AccessControlService {
	return &AccessControlService{db: db, aclPath: aclPath}
}

// NormalizeCIDR canonicalizes a CIDR or bare IP string. Host bits are
// masked off (10.0.0.1/8 becomes 10.0.0.0/8) and a bare address becomes a
// /32 or /128 network, so equality on the result is network equality.
func NormalizeCIDR(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidCIDR
	}

	if strings.Contains(raw, "/") {
		_, ipNet, err := net.ParseCIDR(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidCIDR, raw)
		}
		return ipNet.String(), nil
	}

	// Bare IP: treat as a single-host network.
	ip := net.ParseIP(raw)
	if ip == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidCIDR, raw)
	}
	if ip.To4() != nil {
		return ip.String() + "/32", nil
	}
	return ip.String() + "/128", nil
}

// List returns the current access-control state. No side effects.
func (s *AccessControlService) List() (*models.AccessControlConfig, error) {
	ranges, err := s.ranges()
	if err != nil {
		return nil, err
	}

	cfg := &models.AccessControlConfig{IPRanges: ranges}

	// Enabled is derived: ranges exist and the include file has been
	// written. LastUpdated is the mtime of that file, not of any row.
	if info, err := os.Stat(s.aclPath); err == nil {
		mod := info.ModTime()
		cfg.LastUpdated = &mod
		cfg.Enabled = len(ranges) > 0
	}

	return cfg, nil
}

// AddRange validates and appends a range, persisting before returning the
// refreshed state. Append order is preserved for display.
func (s *AccessControlService) AddRange(candidate models.IPRange) (*models.AccessControlConfig, error) {
	if candidate.AccessLevel == "" {
		candidate.AccessLevel = models.AccessLevelInternal
	}
	if candidate.AccessLevel != models.AccessLevelInternal && candidate.AccessLevel != models.AccessLevelExternal {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccessLevel, candidate.AccessLevel)
	}

	cidr, err := NormalizeCIDR(candidate.CIDR)
	if err != nil {
		return nil, err
	}
	candidate.CIDR = cidr

	var count int64
	if err := s.db.Model(&models.IPRange{}).Where("cidr = ?", cidr).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRange, cidr)
	}

	if err := s.db.Create(&candidate).Error; err != nil {
		return nil, err
	}

	return s.List()
}

// DeleteRange removes the entry whose normalized CIDR matches, preserving
// the relative order of the remainder.
func (s *AccessControlService) DeleteRange(cidr string) (*models.AccessControlConfig, error) {
	key, err := NormalizeCIDR(cidr)
	if err != nil {
		// A string that does not parse cannot match any stored entry.
		return nil, fmt.Errorf("%w: %s", ErrRangeNotFound, cidr)
	}

	result := s.db.Where("cidr = ?", key).Delete(&models.IPRange{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRangeNotFound, key)
	}

	return s.List()
}

// Defaults returns the static catalog of well-known private ranges used to
// pre-fill the add form. Never fails; an unavailable catalog is empty.
func (s *AccessControlService) Defaults() []models.IPRange {
	out := make([]models.IPRange, len(models.DefaultIPRanges))
	copy(out, models.DefaultIPRanges)
	return out
}

func (s *AccessControlService) ranges() ([]models.IPRange, error) {
	var ranges []models.IPRange
	if err := s.db.Order("id asc").Find(&ranges).Error; err != nil {
		return nil, err
	}
	return ranges, nil
}
