package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultRegistry(t *testing.T) {
	reg, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultIDs(), reg.IDs())
	assert.Equal(t, "package-manager", reg.IDs()[0])
}

func TestNew_Filtered(t *testing.T) {
	reg, err := New(Config{Enable: "node,git,ci", Disable: "git"})
	require.NoError(t, err)
	assert.Equal(t, []string{"node", "ci"}, reg.IDs())
}
