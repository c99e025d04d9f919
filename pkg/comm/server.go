package comm

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// MaxReadSize limits a single remote read.
const MaxReadSize = 4096

// Server serves a local bus.Bus to a remote Client.
type Server struct {
	Bus        bus.Bus
	ReadWriter PacketReadWriter

	sendLock sync.Mutex
}

// NewServer creates a Server.
func NewServer(b bus.Bus, rw PacketReadWriter) *Server {
	return &Server{Bus: b, ReadWriter: rw}
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	return receive(ctx, s.ReadWriter, func(pkt []byte) error {
		req, err := DecodeRequest(pkt)
		if err != nil {
			// not a request, simply ignored.
			glog.Warningf("invalid request: %v", err)
			return nil
		}
		return s.reply(s.Serve(ctx, req))
	})
}

// Serve performs the transfer of a request on the local bus.
func (s *Server) Serve(ctx context.Context, req *BusRequest) *BusReply {
	reply := &BusReply{Seq: req.Seq}
	if req.Addr > 0x7F {
		reply.Error = fmt.Sprintf("invalid address %d", req.Addr)
		return reply
	}
	addr := bus.Addr(req.Addr)
	var err error
	switch req.Op {
	case BusOpWrite:
		err = s.Bus.Write(ctx, addr, req.Data)
	case BusOpRead:
		if req.Size < 0 || req.Size > MaxReadSize {
			err = fmt.Errorf("invalid read size %d", req.Size)
			break
		}
		reply.Data, err = s.Bus.Read(ctx, addr, int(req.Size))
	default:
		err = fmt.Errorf("unknown op %d", req.Op)
	}
	if err != nil {
		reply.Error = err.Error()
	}
	return reply
}

func (s *Server) reply(reply *BusReply) error {
	pkt, err := proto.Marshal(reply)
	if err != nil {
		return err
	}
	s.sendLock.Lock()
	defer s.sendLock.Unlock()
	return s.ReadWriter.WritePacket(pkt)
}
