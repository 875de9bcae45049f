package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetResourceUsage(t *testing.T) {
	usage, err := GetResourceUsage()
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.GreaterOrEqual(t, usage.MaxRss, uint64(0))
}
