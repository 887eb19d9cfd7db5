package models

import (
	"time"
)

// Access levels assignable to an IP range. The nginx geo block maps each
// configured range to its level so location blocks can apply differing
// trust rules.
const (
	AccessLevelInternal = "internal"
	AccessLevelExternal = "external"
)

// IPRange is a single network range in the access-control set. CIDR is
// stored in canonical form (network address + prefix length) and is the
// natural key for delete operations; no surrogate ID is exposed on the API.
// The autoincrement ID preserves user-add order for display.
type IPRange struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	CIDR        string    `json:"cidr" gorm:"uniqueIndex"`
	Description string    `json:"description"`
	AccessLevel string    `json:"access_level" gorm:"default:'internal'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccessControlConfig is the assembled view returned to the console. It is
// never stored: Enabled and LastUpdated are derived from the database and
// the generated nginx include file on every read.
type AccessControlConfig struct {
	Enabled     bool       `json:"enabled"`
	IPRanges    []IPRange  `json:"ip_ranges"`
	LastUpdated *time.Time `json:"last_updated"`
}

// DefaultIPRanges is the static catalog of well-known private ranges offered
// by the add-form. It is reference data only and is never merged into the
// configured set automatically.
var DefaultIPRanges = []IPRange{
	{CIDR: "127.0.0.0/8", Description: "IPv4 loopback", AccessLevel: AccessLevelInternal},
	{CIDR: "10.0.0.0/8", Description: "RFC1918 private network", AccessLevel: AccessLevelInternal},
	{CIDR: "172.16.0.0/12", Description: "RFC1918 private network", AccessLevel: AccessLevelInternal},
	{CIDR: "192.168.0.0/16", Description: "RFC1918 private network", AccessLevel: AccessLevelInternal},
	{CIDR: "169.254.0.0/16", Description: "IPv4 link-local", AccessLevel: AccessLevelInternal},
	{CIDR: "::1/128", Description: "IPv6 loopback", AccessLevel: AccessLevelInternal},
	{CIDR: "fc00::/7", Description: "IPv6 unique local", AccessLevel: AccessLevelInternal},
	{CIDR: "fe80::/10", Description: "IPv6 link-local", AccessLevel: AccessLevelInternal},
}
