package sfu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIdentifier_IsUnique(t *testing.T) {
	assert.NotEqual(t, generateIdentifier(), generateIdentifier())
}

func TestGenerateRandomNumber_InRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := generateRandomNumber()
		assert.GreaterOrEqual(t, n, uint32(100000000))
		assert.Less(t, n, uint32(1000000000))
	}
}

func TestOverride_AppliesNonZeroFields(t *testing.T) {
	dst := WorkerSettings{LogLevel: WorkerLogLevelError}
	src := WorkerSettings{LogLevel: WorkerLogLevelDebug, ProtocolVersion: "1.2.0"}

	require.NoError(t, override(&dst, &src))
	assert.Equal(t, WorkerLogLevelDebug, dst.LogLevel)
	assert.Equal(t, "1.2.0", dst.ProtocolVersion)
}

func TestOverride_LeavesZeroSrcFieldsAlone(t *testing.T) {
	dst := WorkerSettings{LogLevel: WorkerLogLevelError}
	src := WorkerSettings{}

	require.NoError(t, override(&dst, &src))
	assert.Equal(t, WorkerLogLevelError, dst.LogLevel, "zero-valued src field must not clobber dst")
}

func TestClone_RoundTripsViaJson(t *testing.T) {
	type pair struct {
		A string
		B int
	}
	src := pair{A: "x", B: 5}
	var dst pair
	require.NoError(t, clone(src, &dst))
	assert.Equal(t, src, dst)
}

func TestSyncMapLen(t *testing.T) {
	var m sync.Map
	assert.Equal(t, 0, syncMapLen(&m))

	m.Store("a", 1)
	m.Store("b", 2)
	assert.Equal(t, 2, syncMapLen(&m))
}
