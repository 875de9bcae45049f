package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDataSink struct {
	messages [][]byte
}

func (s *recordingDataSink) SendDataMessage(dataConsumerID string, payload []byte, ppid SctpPayloadType) {
	s.messages = append(s.messages, payload)
}

func TestDataConsumer_ForwardsWhenNoSubchannelFilter(t *testing.T) {
	sink := &recordingDataSink{}
	dc := NewDataConsumer("dc1", "transport1", "dp1", DataConsumerDirect, nil, "chat", "", false, false, nil, sink, nil)

	dc.ForwardMessage([]byte("hi"), 51, 0)
	assert.Len(t, sink.messages, 1)
}

func TestDataConsumer_SubchannelFilterDropsUnmatched(t *testing.T) {
	sink := &recordingDataSink{}
	dc := NewDataConsumer("dc1", "transport1", "dp1", DataConsumerDirect, nil, "chat", "", false, false, []uint16{5}, sink, nil)

	dc.ForwardMessage([]byte("dropped"), 51, 1)
	assert.Empty(t, sink.messages)

	dc.ForwardMessage([]byte("kept"), 51, 5)
	require.Len(t, sink.messages, 1)
	assert.Equal(t, "kept", string(sink.messages[0]))
}

func TestDataConsumer_ProducerPauseBlocksForwarding(t *testing.T) {
	sink := &recordingDataSink{}
	dc := NewDataConsumer("dc1", "transport1", "dp1", DataConsumerDirect, nil, "chat", "", false, false, nil, sink, nil)

	dc.SetDataProducerPaused()
	dc.ForwardMessage([]byte("hi"), 51, 0)
	assert.Empty(t, sink.messages)

	dc.SetDataProducerResumed()
	dc.ForwardMessage([]byte("hi"), 51, 0)
	assert.Len(t, sink.messages, 1)
}

func TestDataConsumer_NotifyDataProducerClosedClosesOnce(t *testing.T) {
	dc := NewDataConsumer("dc1", "transport1", "dp1", DataConsumerDirect, nil, "chat", "", false, false, nil, &recordingDataSink{}, nil)

	notified := 0
	dc.AddListener(&funcDataConsumerListener{onProducerClose: func() { notified++ }})

	dc.NotifyDataProducerClosed()
	dc.NotifyDataProducerClosed()
	assert.Equal(t, 1, notified)
	assert.True(t, dc.Closed())
}

type funcDataConsumerListener struct {
	onClose         func()
	onProducerClose func()
}

func (f *funcDataConsumerListener) OnDataConsumerClose(*DataConsumer) {
	if f.onClose != nil {
		f.onClose()
	}
}
func (f *funcDataConsumerListener) OnDataConsumerProducerClose(*DataConsumer) {
	if f.onProducerClose != nil {
		f.onProducerClose()
	}
}
