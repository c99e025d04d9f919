package comm

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/openlog"
	"github.com/robotalks/openlog.go/pkg/sim"
)

type chanPacketReadWriter struct {
	readCh  <-chan []byte
	writeCh chan<- []byte
	closeCh chan struct{}
	once    sync.Once
}

func (c *chanPacketReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-c.readCh:
		return pkt, nil
	case <-c.closeCh:
		return nil, io.EOF
	}
}

func (c *chanPacketReadWriter) WritePacket(pkt []byte) error {
	select {
	case c.writeCh <- append([]byte(nil), pkt...):
		return nil
	case <-c.closeCh:
		return ErrClosed
	}
}

func (c *chanPacketReadWriter) Close() error {
	c.once.Do(func() { close(c.closeCh) })
	return nil
}

func packetPipe() (*chanPacketReadWriter, *chanPacketReadWriter) {
	ab, ba := make(chan []byte, 8), make(chan []byte, 8)
	return &chanPacketReadWriter{readCh: ba, writeCh: ab, closeCh: make(chan struct{})},
		&chanPacketReadWriter{readCh: ab, writeCh: ba, closeCh: make(chan struct{})}
}

type remoteTestEnv struct {
	device *sim.Device
	client *Client
	cancel context.CancelFunc
}

func newRemoteTestEnv(t *testing.T) *remoteTestEnv {
	clientEnd, serverEnd := packetPipe()
	env := &remoteTestEnv{
		device: sim.NewDevice(bus.AddrDefault),
		client: NewClient(clientEnd),
	}
	ctx, cancel := context.WithCancel(context.Background())
	env.cancel = cancel
	go NewServer(sim.NewBus(env.device), serverEnd).Run(ctx)
	go env.client.Run(ctx)
	return env
}

func TestRemoteSession(t *testing.T) {
	env := newRemoteTestEnv(t)
	defer env.cancel()
	ctx := context.Background()

	s := openlog.NewSession(env.client)
	s.WriteDelay = 0
	ready, err := s.CheckReady(ctx, bus.AddrDefault)
	require.NoError(t, err)
	require.True(t, ready)

	text := strings.Repeat("remote ", 9)
	outcome, err := s.WriteFile(ctx, bus.AddrDefault, "REMOTE.TXT", text, true)
	require.NoError(t, err)
	require.Equal(t, openlog.Performed, outcome)
	data, ok := env.device.File("REMOTE.TXT")
	require.True(t, ok)
	require.Equal(t, text+"\r\n", string(data))

	_, err = s.ReadFile(ctx, bus.AddrDefault, "REMOTE.TXT", 128)
	require.NoError(t, err)
	require.Equal(t, text+"\r\n", s.Content())

	names, err := s.ListDirectory(ctx, bus.AddrDefault, "*.TXT", 4)
	require.NoError(t, err)
	require.Equal(t, []string{"REMOTE.TXT"}, names)
}

func TestRemoteError(t *testing.T) {
	env := newRemoteTestEnv(t)
	defer env.cancel()
	_, err := env.client.Read(context.Background(), bus.AddrAlternate, 1)
	require.Error(t, err)
	remote, ok := err.(*RemoteError)
	require.True(t, ok)
	require.Equal(t, sim.ErrNoDevice.Error(), remote.Message)
}

func TestClientTimeout(t *testing.T) {
	clientEnd, _ := packetPipe()
	client := NewClient(clientEnd)
	client.Timeout = 10 * time.Millisecond
	err := client.Write(context.Background(), bus.AddrDefault, []byte{1})
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestClientCanceled(t *testing.T) {
	clientEnd, _ := packetPipe()
	client := NewClient(clientEnd)
	client.Timeout = 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Read(ctx, bus.AddrDefault, 1)
	require.Equal(t, context.Canceled, err)
}

func TestClientClosed(t *testing.T) {
	clientEnd, _ := packetPipe()
	client := NewClient(clientEnd)
	client.Timeout = 0
	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- client.Run(ctx) }()
	cancel()
	<-runErr
	err := client.Write(context.Background(), bus.AddrDefault, []byte{1})
	require.Error(t, err)
}

func TestClientSkipsStaleReplies(t *testing.T) {
	clientEnd, peer := packetPipe()
	client := NewClient(clientEnd)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)
	go func() {
		pkt, err := peer.ReadPacket()
		if err != nil {
			return
		}
		req, err := DecodeRequest(pkt)
		if err != nil {
			return
		}
		for _, reply := range []*BusReply{
			{Seq: req.Seq + 7, Data: []byte{0xEE}},
			{Seq: req.Seq, Data: []byte{0x2A}},
		} {
			data, _ := proto.Marshal(reply)
			peer.WritePacket(data)
		}
	}()
	p, err := client.Read(context.Background(), bus.AddrDefault, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0x2A}, p)
}

func TestServeInvalid(t *testing.T) {
	s := NewServer(sim.NewDefault(), nil)
	ctx := context.Background()
	reply := s.Serve(ctx, &BusRequest{Seq: 1, Addr: 0x80})
	require.Equal(t, uint32(1), reply.Seq)
	require.Contains(t, reply.Error, "invalid address")
	reply = s.Serve(ctx, &BusRequest{Seq: 2, Op: BusOpRead, Addr: uint32(bus.AddrDefault), Size: -1})
	require.Contains(t, reply.Error, "invalid read size")
	reply = s.Serve(ctx, &BusRequest{Seq: 3, Op: BusOp(9), Addr: uint32(bus.AddrDefault)})
	require.Contains(t, reply.Error, "unknown op")
	reply = s.Serve(ctx, &BusRequest{Seq: 4, Op: BusOpRead, Addr: uint32(bus.AddrDefault), Size: 0})
	require.Empty(t, reply.Error)
}

func TestRequestEncoding(t *testing.T) {
	data, err := proto.Marshal(&BusRequest{Seq: 3, Op: BusOpRead, Addr: 0x2A, Size: 32})
	require.NoError(t, err)
	req, err := DecodeRequest(data)
	require.NoError(t, err)
	require.Equal(t, BusOpRead, req.Op)
	require.Equal(t, int32(32), req.Size)
	require.Equal(t, "READ", req.Op.String())
	_, err = DecodeReply([]byte{0xFF})
	require.Error(t, err)
}
