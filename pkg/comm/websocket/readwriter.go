// Package websocket carries bus transfers over websocket messages.
package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/comm"
)

// ReadWriter implements PacketReadWriter, one packet per binary message.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Handler serves the bus to every websocket connection.
func Handler(b bus.Bus) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		remote := conn.Request().RemoteAddr
		glog.Infof("websocket client %s connected", remote)
		err := comm.NewServer(b, New(conn)).Run(conn.Request().Context())
		glog.Infof("websocket client %s disconnected: %v", remote, err)
	})
}

// Dial connects to a bridge serving websocket at url and runs the
// connection until ctx is done.
func Dial(ctx context.Context, url string) (*comm.Client, error) {
	origin := "http://localhost/"
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	client := comm.NewClient(New(conn))
	go func() {
		if err := client.Run(ctx); err != nil && err != context.Canceled {
			glog.Errorf("websocket %s: %v", url, err)
		}
	}()
	return client, nil
}
