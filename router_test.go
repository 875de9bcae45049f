package sfu

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RtpCapabilitiesIncludeRtx(t *testing.T) {
	r := newTestRouter(t)
	assert.NotEmpty(t, r.RtpCapabilities().Codecs)
}

func produceOnRouter(t *testing.T, r *Router, dt *DirectTransport) *Producer {
	params := RtpParameters{
		Codecs:    []*RtpCodecParameters{{MimeType: "video/VP8", PayloadType: 96, ClockRate: 90000}},
		Encodings: []RtpEncodingParameters{{Ssrc: 2001}},
	}
	mapping, err := getProducerRtpParametersMapping(params, r.RtpCapabilities())
	require.NoError(t, err)

	p, err := NewProducer("producer1", dt.Id(), MediaKind_Video, params, mapping, false, nil)
	require.NoError(t, err)
	require.NoError(t, dt.Produce(p))
	return p
}

func TestRouter_CanConsume(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))

	p := produceOnRouter(t, r, dt)

	ok, err := r.CanConsume(p.Id(), r.RtpCapabilities())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.CanConsume("nonexistent", r.RtpCapabilities())
	assert.Error(t, err)
}

func TestRouter_ProducerRtpFanOutToConsumer(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))

	p := produceOnRouter(t, r, dt)

	consumable, err := getConsumableRtpParameters(p.Kind(), p.RtpParameters(), r.RtpCapabilities(), p.rtpMapping)
	require.NoError(t, err)
	consumerParams, err := getConsumerRtpParameters(consumable, r.RtpCapabilities(), false)
	require.NoError(t, err)

	sink := &recordingSink{}
	c := NewConsumer("consumer1", dt.Id(), p.Id(), p.Kind(), ConsumerSimple, consumerParams, false, false, nil, sink, nil)
	require.NoError(t, dt.Consume(c, 0))

	dt.HandleRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 2001, SequenceNumber: 1}}, false)

	assert.Len(t, sink.packets, 1)
}

func TestRouter_ProducerCloseTearsDownConsumer(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))

	p := produceOnRouter(t, r, dt)
	consumable, err := getConsumableRtpParameters(p.Kind(), p.RtpParameters(), r.RtpCapabilities(), p.rtpMapping)
	require.NoError(t, err)
	consumerParams, err := getConsumerRtpParameters(consumable, r.RtpCapabilities(), false)
	require.NoError(t, err)

	sink := &recordingSink{}
	c := NewConsumer("consumer1", dt.Id(), p.Id(), p.Kind(), ConsumerSimple, consumerParams, false, false, nil, sink, nil)
	require.NoError(t, dt.Consume(c, 0))

	p.Close()
	assert.True(t, c.Closed())
}

func TestRouter_PipeToRouterLinksProducerAcrossRouters(t *testing.T) {
	src := newTestRouter(t)
	dst, err := NewRouter("router2", testMediaCodecs, nopRouterListener{}, nil)
	require.NoError(t, err)

	dt := newDirectTransport("transport1", src.Id(), nil, src, &DirectTransportOptions{})
	require.NoError(t, src.RegisterTransport(dt.Transport))
	p := produceOnRouter(t, src, dt)

	result, err := src.PipeToRouter(PipeToRouterOptions{ProducerId: p.Id(), Router: dst})
	require.NoError(t, err)
	require.NotNil(t, result.PipeProducer)
	require.NotNil(t, result.PipeConsumer)

	_, err = dst.GetTransport(result.PipeProducer.TransportId())
	assert.NoError(t, err)

	dt.HandleRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 2001, SequenceNumber: 1}}, false)

	stats := dst.producers[result.PipeProducer.Id()].GetStats()
	require.Len(t, stats, 1)
	assert.EqualValues(t, 1, stats[0].PacketCount)
}

func TestRouter_PipeToRouterRejectsSelf(t *testing.T) {
	r := newTestRouter(t)
	_, err := r.PipeToRouter(PipeToRouterOptions{ProducerId: "x", Router: r})
	assert.Error(t, err)
}

// TestRouter_DuplicateProducerIdAcrossTransportsRejected verifies ids are
// unique per Router, not per Transport: creating a Producer with an id
// already used by a Producer on a different Transport of the same Router
// must fail, and must leave the rejecting Transport's own state untouched.
func TestRouter_DuplicateProducerIdAcrossTransportsRejected(t *testing.T) {
	r := newTestRouter(t)
	dt1 := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt1.Transport))
	dt2 := newDirectTransport("transport2", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt2.Transport))

	p1 := produceOnRouter(t, r, dt1)

	params := RtpParameters{
		Codecs:    []*RtpCodecParameters{{MimeType: "video/VP8", PayloadType: 96, ClockRate: 90000}},
		Encodings: []RtpEncodingParameters{{Ssrc: 3001}},
	}
	mapping, err := getProducerRtpParametersMapping(params, r.RtpCapabilities())
	require.NoError(t, err)

	p2, err := NewProducer(p1.Id(), dt2.Id(), MediaKind_Video, params, mapping, false, nil)
	require.NoError(t, err)

	err = dt2.Produce(p2)
	require.Error(t, err)
	sfuErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrDuplicateID, sfuErr.Kind)

	producerIds, _, _, _ := dt2.dumpIds()
	assert.NotContains(t, producerIds, p1.Id())

	assert.Same(t, p1, r.producers[p1.Id()])
}
