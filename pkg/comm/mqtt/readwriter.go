package mqtt

import (
	"context"
	"io"
	"sync"

	"github.com/robotalks/openlog.go/pkg/comm"
)

// Topic suffixes under a bridge.
const (
	TopicRequest = "req"
	TopicReply   = "rep"
	TopicMeta    = "meta"
)

// ReadWriter implements PacketReadWriter on a pair of topics.
// Run must be running to receive packets.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	doneCh   chan struct{}
	once     sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 4),
		doneCh:   make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForClient sets topics for the client side of a bridge:
// SubTopic = ID/rep
// PubTopic = ID/req
func (p *ReadWriter) ForClient(ref comm.BridgeRef) *ReadWriter {
	prefix := ref.Name() + "/"
	return p.WithTopics(prefix+TopicReply, prefix+TopicRequest)
}

// ForBridge sets topics for the bridge:
// SubTopic = ID/req
// PubTopic = ID/rep
func (p *ReadWriter) ForBridge(ref comm.BridgeRef) *ReadWriter {
	prefix := ref.Name() + "/"
	return p.WithTopics(prefix+TopicRequest, prefix+TopicReply)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.doneCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	defer p.once.Do(func() { close(p.doneCh) })
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.doneCh:
	}
}
