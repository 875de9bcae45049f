package sfu

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(sink ConsumerSink, consumerType ConsumerType, preferred *ConsumerLayers) *Consumer {
	params := RtpParameters{
		Codecs:    []*RtpCodecParameters{{MimeType: "video/VP8", PayloadType: 96, ClockRate: 90000}},
		Encodings: []RtpEncodingParameters{{Ssrc: 5001}},
	}
	return NewConsumer("consumer1", "transport1", "producer1", MediaKind_Video, consumerType, params, false, false, preferred, sink, nil)
}

func TestConsumer_SimpleForwardsEveryPacket(t *testing.T) {
	sink := &recordingSink{}
	c := newTestConsumer(sink, ConsumerSimple, nil)

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 9999, SequenceNumber: 1}}, 0, false)
	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 9999, SequenceNumber: 2}}, 0, false)

	assert.Len(t, sink.packets, 2)
	assert.EqualValues(t, 5001, sink.packets[0].pkt.SSRC, "outbound SSRC must be rewritten to the consumer's own")
}

func TestConsumer_PausedDropsPackets(t *testing.T) {
	sink := &recordingSink{}
	c := newTestConsumer(sink, ConsumerSimple, nil)
	assert := assert.New(t)

	assert.NoError(c.Pause())
	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 0, false)
	assert.Empty(sink.packets)

	assert.NoError(c.Resume())
	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 0, false)
	assert.Len(sink.packets, 1)
}

func TestConsumer_SimulcastWaitsForKeyframeOnSelectedLayer(t *testing.T) {
	sink := &recordingSink{}
	c := newTestConsumer(sink, ConsumerSimulcast, &ConsumerLayers{SpatialLayer: 1})

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 1, false)
	assert.Empty(t, sink.packets, "non-keyframe before the first switch must be dropped")

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 0, true)
	assert.Empty(t, sink.packets, "keyframe on a non-selected layer must not switch or forward")

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 1, true)
	assert.Len(t, sink.packets, 1, "keyframe on the selected layer switches and forwards")

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 1, false)
	assert.Len(t, sink.packets, 2, "subsequent packets on the now-current layer keep forwarding")
}

func TestConsumer_SequenceNumberRebasedFromZero(t *testing.T) {
	sink := &recordingSink{}
	c := newTestConsumer(sink, ConsumerSimple, nil)

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1, SequenceNumber: 500}}, 0, false)
	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1, SequenceNumber: 501}}, 0, false)

	assert.EqualValues(t, 0, sink.packets[0].pkt.SequenceNumber)
	assert.EqualValues(t, 1, sink.packets[1].pkt.SequenceNumber)
}

func TestConsumer_TimestampMonotonicAcrossLayerSwitch(t *testing.T) {
	sink := &recordingSink{}
	c := newTestConsumer(sink, ConsumerSimulcast, &ConsumerLayers{SpatialLayer: 0})

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1, SequenceNumber: 100, Timestamp: 90000}}, 0, true)
	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1, SequenceNumber: 101, Timestamp: 93000}}, 0, false)
	require.Len(t, sink.packets, 2)
	lastTs := sink.packets[1].pkt.Timestamp
	lastSeq := sink.packets[1].pkt.SequenceNumber

	// A different encoding's RTP clock origin: a much smaller raw timestamp
	// that would otherwise make the outbound line jump backward.
	c.SetPreferredLayers(&ConsumerLayers{SpatialLayer: 2})
	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 2, SequenceNumber: 5, Timestamp: 1000}}, 2, true)
	require.Len(t, sink.packets, 3)

	assert.Greater(t, sink.packets[2].pkt.Timestamp, lastTs, "timestamp must not go backward across a layer switch")
	assert.Greater(t, sink.packets[2].pkt.SequenceNumber, lastSeq, "sequence number must not go backward across a layer switch")
}

func TestConsumer_CloseIsIdempotent(t *testing.T) {
	c := newTestConsumer(&recordingSink{}, ConsumerSimple, nil)
	c.Close()
	assert.True(t, c.Closed())
	c.Close() // must not panic on double close
}

type recordingConsumerListener struct {
	keyFrameRequiredLayers []int
}

func (l *recordingConsumerListener) OnConsumerClose(c *Consumer)         {}
func (l *recordingConsumerListener) OnConsumerProducerClose(c *Consumer) {}
func (l *recordingConsumerListener) OnConsumerKeyFrameRequired(c *Consumer, spatialLayer int) {
	l.keyFrameRequiredLayers = append(l.keyFrameRequiredLayers, spatialLayer)
}

// TestConsumer_SwitchingUpRequestsUpstreamKeyframe covers Scenario C: a
// Simulcast consumer starting at L0 that is asked to switch up to L2 must
// emit an upstream keyframe request for L2, and must keep forwarding L0
// until a keyframe actually arrives on L2.
func TestConsumer_SwitchingUpRequestsUpstreamKeyframe(t *testing.T) {
	sink := &recordingSink{}
	c := newTestConsumer(sink, ConsumerSimulcast, &ConsumerLayers{SpatialLayer: 0})
	l := &recordingConsumerListener{}
	c.AddListener(l)

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 0, true)
	assert.Len(t, sink.packets, 1)

	c.SetPreferredLayers(&ConsumerLayers{SpatialLayer: 2})
	assert.Equal(t, []int{2}, l.keyFrameRequiredLayers, "switching up must emit an upstream keyframe request for the target layer")

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 0, false)
	assert.Len(t, sink.packets, 2, "must keep forwarding L0 until a keyframe on L2 arrives")

	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 1}}, 2, true)
	assert.Equal(t, 2, c.CurrentLayers().SpatialLayer, "keyframe on the target layer completes the switch")

	l.keyFrameRequiredLayers = nil
	c.SetPreferredLayers(&ConsumerLayers{SpatialLayer: 0})
	assert.Empty(t, l.keyFrameRequiredLayers, "switching down must not request a keyframe")
}
