package comm

import (
	"github.com/golang/protobuf/proto"
)

// BusOp selects the transfer a BusRequest asks for.
type BusOp int32

// Bus operations.
const (
	BusOpWrite BusOp = 0
	BusOpRead  BusOp = 1
)

var busOpNames = map[int32]string{
	0: "WRITE",
	1: "READ",
}

var busOpValues = map[string]int32{
	"WRITE": 0,
	"READ":  1,
}

// String implements fmt.Stringer.
func (o BusOp) String() string {
	return proto.EnumName(busOpNames, int32(o))
}

// BusRequest asks the bridge for one bus transfer.
type BusRequest struct {
	Seq  uint32 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	Op   BusOp  `protobuf:"varint,2,opt,name=op,proto3,enum=openlog.bus.v1.BusOp" json:"op,omitempty"`
	Addr uint32 `protobuf:"varint,3,opt,name=addr,proto3" json:"addr,omitempty"`
	Data []byte `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
	Size int32  `protobuf:"varint,5,opt,name=size,proto3" json:"size,omitempty"`
}

// Reset implements proto.Message.
func (m *BusRequest) Reset() { *m = BusRequest{} }

// String implements proto.Message.
func (m *BusRequest) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*BusRequest) ProtoMessage() {}

// BusReply answers the BusRequest with the same Seq.
type BusReply struct {
	Seq   uint32 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	Data  []byte `protobuf:"bytes,2,opt,name=data,proto3" json:"data,omitempty"`
	Error string `protobuf:"bytes,3,opt,name=error,proto3" json:"error,omitempty"`
}

// Reset implements proto.Message.
func (m *BusReply) Reset() { *m = BusReply{} }

// String implements proto.Message.
func (m *BusReply) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*BusReply) ProtoMessage() {}

func init() {
	proto.RegisterEnum("openlog.bus.v1.BusOp", busOpNames, busOpValues)
	proto.RegisterType((*BusRequest)(nil), "openlog.bus.v1.BusRequest")
	proto.RegisterType((*BusReply)(nil), "openlog.bus.v1.BusReply")
}

// DecodeRequest decodes a packet into BusRequest.
func DecodeRequest(pkt []byte) (*BusRequest, error) {
	var req BusRequest
	if err := proto.Unmarshal(pkt, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeReply decodes a packet into BusReply.
func DecodeReply(pkt []byte) (*BusReply, error) {
	var reply BusReply
	if err := proto.Unmarshal(pkt, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
