package nginx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rjsears/n8n-nginx/backend/internal/models"
)

func TestGenerate_Empty(t *testing.T) {
	out := Generate(nil)
	assert.Contains(t, out, "geo $n8n_access {")
	assert.Contains(t, out, "default 0;")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestGenerate_AccessLevels(t *testing.T) {
	out := Generate([]models.IPRange{
		{CIDR: "192.168.1.0/24", Description: "Home", AccessLevel: models.AccessLevelInternal},
		{CIDR: "203.0.113.0/24", AccessLevel: models.AccessLevelExternal},
	})

	assert.Contains(t, out, "192.168.1.0/24 1; # Home")
	assert.Contains(t, out, "203.0.113.0/24 2;")
}

func TestGenerate_PreservesOrder(t *testing.T) {
	out := Generate([]models.IPRange{
		{CIDR: "10.0.0.0/8"},
		{CIDR: "172.16.0.0/12"},
		{CIDR: "192.168.0.0/16"},
	})

	first := strings.Index(out, "10.0.0.0/8")
	second := strings.Index(out, "172.16.0.0/12")
	third := strings.Index(out, "192.168.0.0/16")
	assert.True(t, first < second && second < third)
}

func TestGenerate_Deterministic(t *testing.T) {
	ranges := []models.IPRange{
		{CIDR: "10.0.0.0/8", Description: "lab"},
		{CIDR: "fe80::/10", AccessLevel: models.AccessLevelExternal},
	}
	assert.Equal(t, Generate(ranges), Generate(ranges))
}

func TestGenerate_SanitizesDescription(t *testing.T) {
	out := Generate([]models.IPRange{
		{CIDR: "10.0.0.0/8", Description: "line one\nallow all;"},
	})

	// A newline in a description must not escape the comment.
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		assert.False(t, strings.HasPrefix(trimmed, "allow"), "description leaked a directive: %q", line)
	}
	assert.Contains(t, out, "# line one allow all;")
}
