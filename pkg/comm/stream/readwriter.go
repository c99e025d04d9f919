// Package stream carries bus transfers over a byte stream such as a TCP
// connection or a serial port.
package stream

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/comm"
	fx "github.com/robotalks/openlog.go/pkg/framework"
)

// MaxPacketSize limits the size of a received packet.
const MaxPacketSize = 64 * 1024

// ReadWriter implements PacketReadWriter.
// Each packet is prefixed by 4-byte (little-endian) indicate the length.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet size %d exceeds %d", size, MaxPacketSize)
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.Write(buf)
	return err
}

// Close implements io.Closer when the underlying stream does.
func (p *ReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Dial connects a Client over a stream and runs it until ctx is done.
func Dial(ctx context.Context, name string, s io.ReadWriter) *comm.Client {
	client := comm.NewClient(New(s))
	go func() {
		if err := client.Run(ctx); err != nil && err != context.Canceled {
			glog.Errorf("%s: %v", name, err)
		}
	}()
	return client
}

// Serve accepts connections and serves the bus to each of them until
// ctx is done.
func Serve(ctx context.Context, l net.Listener, b bus.Bus) error {
	return fx.RunWithContextCloser(ctx, l, func() error {
		for {
			conn, err := l.Accept()
			if err != nil {
				return err
			}
			go func(conn net.Conn) {
				remote := conn.RemoteAddr()
				glog.Infof("stream client %s connected", remote)
				err := comm.NewServer(b, New(conn)).Run(ctx)
				glog.Infof("stream client %s disconnected: %v", remote, err)
			}(conn)
		}
	})
}
