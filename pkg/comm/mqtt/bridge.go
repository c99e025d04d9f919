package mqtt

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/comm"
)

// Bridge serves a local bus through MQTT and announces itself with
// retained metadata.
type Bridge struct {
	Queue *Queue
	Info  comm.BridgeInfo

	metaJSON []byte
	server   *comm.Server
}

// NewBridge creates a Bridge.
func NewBridge(brokerURL string, info comm.BridgeInfo, b bus.Bus) (*Bridge, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaTopic := info.Ref.Name() + "/" + TopicMeta
	opts.SetBinaryWill(topicPrefix+metaTopic, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("openlog:" + info.Ref.Name())
	}
	r := &Bridge{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: meta,
	}
	r.Queue.OnConnect = func(*Queue) { r.publishMeta(r.metaJSON) }
	r.server = comm.NewServer(b, NewPacketReadWriter(r.Queue).ForBridge(info.Ref))
	return r, nil
}

// Name implements Named.
func (r *Bridge) Name() string {
	return "mqtt:" + r.Info.Ref.Name()
}

// Run implements Runnable.
func (r *Bridge) Run(ctx context.Context) error {
	if err := r.Queue.ConnectAndWait(ctx); err != nil {
		return err
	}
	defer r.Queue.Close()
	err := r.server.Run(ctx)
	r.publishMeta(nil).Wait()
	return err
}

func (r *Bridge) publishMeta(meta []byte) paho.Token {
	glog.V(2).Infof("bridge %s meta %d bytes", r.Info.Ref.Name(), len(meta))
	return r.Queue.PubWith(r.Info.Ref.Name()+"/"+TopicMeta, meta, 1, true)
}
