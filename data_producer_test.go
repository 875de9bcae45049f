package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataProducer_ReceiveMessageCountsBytes(t *testing.T) {
	dp := NewDataProducer("dp1", "transport1", DataProducerDirect, nil, "chat", "", false, nil)

	accepted := dp.ReceiveMessage([]byte("hello"))
	assert.True(t, accepted)

	stats := dp.GetStats()
	assert.EqualValues(t, 1, stats.MessagesReceived)
	assert.EqualValues(t, 5, stats.BytesReceived)
}

func TestDataProducer_PausedDropsMessages(t *testing.T) {
	dp := NewDataProducer("dp1", "transport1", DataProducerDirect, nil, "chat", "", false, nil)
	require.NoError(t, dp.Pause())

	accepted := dp.ReceiveMessage([]byte("hello"))
	assert.False(t, accepted)
	assert.Zero(t, dp.GetStats().MessagesReceived)
}

func TestDataProducer_CloseNotifiesOnce(t *testing.T) {
	dp := NewDataProducer("dp1", "transport1", DataProducerDirect, nil, "chat", "", false, nil)

	closes := 0
	dp.AddListener(&funcDataProducerListener{onClose: func() { closes++ }})

	dp.Close()
	dp.Close()
	assert.Equal(t, 1, closes)
}

type funcDataProducerListener struct {
	onClose func()
}

func (f *funcDataProducerListener) OnDataProducerClose(*DataProducer)  { f.onClose() }
func (f *funcDataProducerListener) OnDataProducerPause(*DataProducer)  {}
func (f *funcDataProducerListener) OnDataProducerResume(*DataProducer) {}
