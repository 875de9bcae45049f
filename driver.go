package sfu

import (
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// TransportDriver is the boundary between this module's routing engine and
// whatever actually owns a socket: a DTLS/ICE stack for WebRtcTransport, a
// plain UDP socket for PlainTransport, or an in-process pipe for
// PipeTransport. This module never implements one; it only calls through
// the interface so a concrete driver can be plugged in by the process that
// embeds this engine.
type TransportDriver interface {
	// SendRtp writes an outbound RTP packet for the given Consumer.
	SendRtp(consumerID string, pkt *rtp.Packet) error

	// SendRtcp writes outbound RTCP (PLI/FIR keyframe requests, receiver
	// reports) toward the Producer side of the transport.
	SendRtcp(pkts []rtcp.Packet) error

	// SendSctp writes an outbound SCTP/data-channel message for the given
	// DataConsumer.
	SendSctp(dataConsumerID string, payload []byte, ppid SctpPayloadType) error

	// Close tears down whatever sockets or associations the driver owns.
	Close() error
}

// RtpPacketDecoder turns a raw inbound packet into a parsed rtp.Packet and
// reports whether it carries a keyframe, information only the
// codec-specific payload depacketizer can know. It does not resolve the
// Producer; Transport.HandleRtpPacket does that by SSRC.
type RtpPacketDecoder interface {
	Decode(raw []byte) (pkt *rtp.Packet, isKeyFrame bool, err error)
}
