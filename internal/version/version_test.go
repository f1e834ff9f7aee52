package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()
	assert.Contains(t, s, Version())
	assert.Contains(t, s, runtime.Version())
	assert.NotEmpty(t, Commit())
}

func TestCommit_Override(t *testing.T) {
	old := commit
	t.Cleanup(func() { commit = old })

	commit = "abc123"
	assert.Equal(t, "abc123", Commit())
}
