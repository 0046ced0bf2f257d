package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	out := String()
	assert.True(t, strings.HasPrefix(out, "gewatch dev\n"))
	assert.Contains(t, out, "commit: unknown")
}
