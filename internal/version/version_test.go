package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	origBuildTime, origGitCommit := BuildTime, GitCommit
	defer func() {
		BuildTime, GitCommit = origBuildTime, origGitCommit
	}()

	BuildTime, GitCommit = "unknown", "unknown"
	assert.Equal(t, Version, Full())

	BuildTime, GitCommit = "2026-01-01T00:00:00Z", "abc1234"
	assert.Contains(t, Full(), Version)
	assert.Contains(t, Full(), "abc1234")
}
