package comm

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// DefaultTimeout is the default expiration expecting a reply.
const DefaultTimeout = 2 * time.Second

// Client implements bus.Bus by forwarding transfers to a bridge.
// Transfers are sent one at a time. Run must be running to receive
// replies.
type Client struct {
	ReadWriter PacketReadWriter
	Timeout    time.Duration

	seq     uint32
	replyCh chan *BusReply
	doneCh  chan struct{}
	reqLock sync.Mutex
	runOnce sync.Once
}

// NewClient creates a Client with given PacketReadWriter.
func NewClient(rw PacketReadWriter) *Client {
	return &Client{
		ReadWriter: rw,
		Timeout:    DefaultTimeout,
		replyCh:    make(chan *BusReply, 4),
		doneCh:     make(chan struct{}),
	}
}

// Write implements bus.Bus.
func (c *Client) Write(ctx context.Context, addr bus.Addr, p []byte) error {
	_, err := c.do(ctx, &BusRequest{Op: BusOpWrite, Addr: uint32(addr), Data: p})
	return err
}

// Read implements bus.Bus.
func (c *Client) Read(ctx context.Context, addr bus.Addr, n int) ([]byte, error) {
	reply, err := c.do(ctx, &BusRequest{Op: BusOpRead, Addr: uint32(addr), Size: int32(n)})
	if err != nil {
		return nil, err
	}
	return reply.Data, nil
}

// Run implements Runnable.
func (c *Client) Run(ctx context.Context) error {
	var err error
	c.runOnce.Do(func() {
		defer close(c.doneCh)
		err = receive(ctx, c.ReadWriter, c.handlePacket)
	})
	return err
}

func (c *Client) handlePacket(pkt []byte) error {
	reply, err := DecodeReply(pkt)
	if err != nil {
		glog.Warningf("invalid reply: %v", err)
		return nil
	}
	select {
	case c.replyCh <- reply:
	default:
		glog.Warningf("reply %d dropped", reply.Seq)
	}
	return nil
}

func (c *Client) do(ctx context.Context, req *BusRequest) (*BusReply, error) {
	c.reqLock.Lock()
	defer c.reqLock.Unlock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	req.Seq = c.seq
	pkt, err := proto.Marshal(req)
	if err != nil {
		return nil, err
	}
	c.drain()
	if err = c.ReadWriter.WritePacket(pkt); err != nil {
		return nil, err
	}

	var expireCh <-chan time.Time
	if c.Timeout > 0 {
		timer := time.NewTimer(c.Timeout)
		defer timer.Stop()
		expireCh = timer.C
	}
	for {
		select {
		case reply := <-c.replyCh:
			if reply.Seq != req.Seq {
				glog.V(3).Infof("stale reply %d, expect %d", reply.Seq, req.Seq)
				continue
			}
			if reply.Error != "" {
				return reply, &RemoteError{Message: reply.Error}
			}
			return reply, nil
		case <-expireCh:
			return nil, context.DeadlineExceeded
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.doneCh:
			return nil, ErrClosed
		}
	}
}

func (c *Client) drain() {
	for {
		select {
		case <-c.replyCh:
		default:
			return
		}
	}
}
