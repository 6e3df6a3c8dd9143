package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	origVersion, origDate := Version, BuildDate
	t.Cleanup(func() { Version, BuildDate = origVersion, origDate })

	Version, BuildDate = "v1.2.3", ""
	assert.Equal(t, "v1.2.3", Info())

	BuildDate = "2026-01-01"
	assert.Equal(t, "v1.2.3 (built 2026-01-01)", Info())

	Version = ""
	assert.NotEmpty(t, GetVersion())
}
