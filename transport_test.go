package sfu

import (
	"testing"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_ProduceRejectsDuplicateId(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))

	p := produceOnRouter(t, r, dt)
	p2, err := NewProducer("producer2", dt.Id(), p.Kind(), p.RtpParameters(), p.rtpMapping, false, nil)
	require.NoError(t, err)

	err = dt.Produce(p2)
	assert.NoError(t, err, "distinct producer id must succeed")

	err = dt.Produce(p)
	assert.Error(t, err, "duplicate producer id must fail")
}

func TestTransport_ProduceRejectsAfterClose(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))
	dt.Close()

	p := newTestProducer(t)
	assert.Error(t, dt.Produce(p))
}

func TestTransport_HandleRtpPacketIgnoresUnknownSsrc(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))
	produceOnRouter(t, r, dt)

	assert.NotPanics(t, func() {
		dt.HandleRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 999999}}, false)
	})
}

func TestTransport_CloseCascadesToProducersAndConsumers(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))

	p := produceOnRouter(t, r, dt)
	consumable, err := getConsumableRtpParameters(p.Kind(), p.RtpParameters(), r.RtpCapabilities(), p.rtpMapping)
	require.NoError(t, err)
	consumerParams, err := getConsumerRtpParameters(consumable, r.RtpCapabilities(), false)
	require.NoError(t, err)

	c := NewConsumer("consumer1", dt.Id(), p.Id(), p.Kind(), ConsumerSimple, consumerParams, false, false, nil, &recordingSink{}, nil)
	require.NoError(t, dt.Consume(c, 0))

	dt.Close()
	assert.True(t, p.Closed())
	assert.True(t, c.Closed())
}

func TestTransport_DumpIds(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))
	produceOnRouter(t, r, dt)

	producerIds, _, _, _ := dt.dumpIds()
	assert.Contains(t, producerIds, "producer1")
}

func TestTransport_HandleRtpPacketRoutesRtxToMediaProducer(t *testing.T) {
	r := newTestRouter(t)
	dt := newDirectTransport("transport1", r.Id(), nil, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))
	p := produceOnRouter(t, r, dt)

	dt.HandleRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 2001, SequenceNumber: 1}}, false)
	require.Len(t, p.Scores(), 1)
	mediaStream, ok := p.streams.Get(2001)
	require.True(t, ok)

	rtxSsrc := uint32(9001)
	p.rtpParams.Encodings[0].Rtx = &RtpEncodingRtx{Ssrc: rtxSsrc}
	dt.HandleRtpPacket(&rtp.Packet{
		Header:  rtp.Header{SSRC: rtxSsrc, SequenceNumber: 55},
		Payload: []byte{0, 2, 0xCD},
	}, false)

	rtxStream, ok := p.streams.Get(2001)
	require.True(t, ok)
	assert.Same(t, mediaStream, rtxStream, "an RTX packet must resolve to the same stream as its media SSRC")
}

// fakeDriver records outbound RTP sent through SendRtp, standing in for the
// concrete TransportDriver an embedding process would supply.
type fakeDriver struct {
	sent []*rtp.Packet
}

func (d *fakeDriver) SendRtp(consumerID string, pkt *rtp.Packet) error { d.sent = append(d.sent, pkt); return nil }
func (d *fakeDriver) SendRtcp(pkts []rtcp.Packet) error                { return nil }
func (d *fakeDriver) SendSctp(consumerID string, payload []byte, ppid SctpPayloadType) error {
	return nil
}
func (d *fakeDriver) Close() error { return nil }

func TestTransport_HandleRtcpNackRetransmitsFromConsumerHistory(t *testing.T) {
	r := newTestRouter(t)
	driver := &fakeDriver{}
	dt := newDirectTransport("transport1", r.Id(), driver, r, &DirectTransportOptions{})
	require.NoError(t, r.RegisterTransport(dt.Transport))

	p := produceOnRouter(t, r, dt)
	consumable, err := getConsumableRtpParameters(p.Kind(), p.RtpParameters(), r.RtpCapabilities(), p.rtpMapping)
	require.NoError(t, err)
	consumerParams, err := getConsumerRtpParameters(consumable, r.RtpCapabilities(), false)
	require.NoError(t, err)
	require.NotNil(t, consumerParams.Encodings[0].Rtx, "test codec capabilities must negotiate RTX")

	c := NewConsumer("consumer1", dt.Id(), p.Id(), p.Kind(), ConsumerSimple, consumerParams, false, false, nil, &recordingSink{}, nil)
	require.NoError(t, dt.Consume(c, consumerParams.Encodings[0].Rtx.Ssrc))

	// ForwardRtpPacket rewrites the media SSRC's sequence number onto the
	// Consumer's own numbering line, starting at 0; downstream NACKs name
	// that outbound sequence number, not the Producer's.
	c.ForwardRtpPacket(&rtp.Packet{Header: rtp.Header{SSRC: 2001, SequenceNumber: 10}}, 0, false)

	dt.HandleRtcpNack(&rtcp.TransportLayerNack{
		MediaSSRC: consumerParams.Encodings[0].Ssrc,
		Nacks:     []rtcp.NackPair{{PacketID: 0}},
	})

	require.Len(t, driver.sent, 1)
	assert.EqualValues(t, consumerParams.Encodings[0].Rtx.Ssrc, driver.sent[0].Header.SSRC)
	assert.Equal(t, []byte{0, 0}, driver.sent[0].Payload[:2], "retransmitted RTX payload must be prefixed with the original sequence number")
}
