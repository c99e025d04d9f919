// Package comm carries bus transfers between a client and a bridge
// serving a local bus, over any packet transport.
package comm

import (
	"errors"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// ErrClosed indicates the transport stopped receiving.
var ErrClosed = errors.New("connection closed")

// RemoteError is a failure reported by the bridge.
type RemoteError struct {
	Message string
}

// Error implements error.
func (e *RemoteError) Error() string {
	return "remote: " + e.Message
}

// BridgeRef is a reference to a bridge.
type BridgeRef struct {
	ID string
}

// Name retrieves the name from ref.
func (r BridgeRef) Name() string {
	return r.ID
}

// IsValid indicates BridgeRef is valid.
func (r BridgeRef) IsValid() bool {
	return r.ID != "" && r.ID != "+" && r.ID != "#"
}

// BridgeMeta provides metadata of a bridge.
type BridgeMeta struct {
	Description string            `json:"description,omitempty"`
	Bus         string            `json:"bus,omitempty"`
	Addrs       []string          `json:"addrs,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// BridgeInfo provides information of a bridge.
type BridgeInfo struct {
	Ref  BridgeRef
	Meta BridgeMeta
}
