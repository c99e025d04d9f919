package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/comm"
)

// Connector discovers and connects to bridges on a broker.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
	}, nil
}

// SplitBusURL splits mqtt://host/prefix/ID into the broker URL with
// the prefix and the bridge reference.
func SplitBusURL(busURL string) (string, comm.BridgeRef, error) {
	u, err := url.Parse(busURL)
	if err != nil {
		return "", comm.BridgeRef{}, err
	}
	dir, id := path.Split(strings.TrimSuffix(u.Path, "/"))
	ref := comm.BridgeRef{ID: id}
	if !ref.IsValid() {
		return "", ref, fmt.Errorf("%s: bridge id missing", busURL)
	}
	u.Path = dir
	return u.String(), ref, nil
}

// Discover lists bridges with retained metadata.
func (c *Connector) Discover(ctx context.Context) (res []comm.BridgeInfo, err error) {
	q := NewQueue(c.options, c.topicPrefix)
	if err = q.ConnectAndWait(ctx); err != nil {
		return nil, err
	}
	defer q.Close()
	resCh := make(chan comm.BridgeInfo, 1)
	sub := q.Sub("+/"+TopicMeta, Handler(func(topic string, payload []byte) {
		info, ok := ParseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// ParseMeta decodes a retained meta message. Empty payload means the
// bridge is gone.
func ParseMeta(topic string, payload []byte) (info comm.BridgeInfo, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 2 || items[1] != TopicMeta || len(payload) == 0 {
		return
	}
	info.Ref.ID = items[0]
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("bridge %s: invalid meta: %v", items[0], err)
	}
	return info, info.Ref.IsValid()
}

// Connect connects to the specified bridge. The returned Conn must be
// Run to receive replies.
func (c *Connector) Connect(ctx context.Context, ref comm.BridgeRef) (*Conn, error) {
	q := NewQueue(c.options, c.topicPrefix)
	conn := &Conn{Queue: q, Client: comm.NewClient(NewPacketReadWriter(q).ForClient(ref))}
	if err := q.ConnectAndWait(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// Conn is a bus.Bus reaching a bridge through MQTT.
type Conn struct {
	*comm.Client
	Queue *Queue
}

// Run implements Runnable.
func (c *Conn) Run(ctx context.Context) error {
	defer c.Queue.Close()
	return c.Client.Run(ctx)
}

// Dial connects to the bridge named by a bus URL and runs the
// connection until ctx is done.
func Dial(ctx context.Context, busURL string) (*Conn, error) {
	brokerURL, ref, err := SplitBusURL(busURL)
	if err != nil {
		return nil, err
	}
	connector, err := NewConnector(brokerURL)
	if err != nil {
		return nil, err
	}
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := conn.Run(ctx); err != nil && err != context.Canceled {
			glog.Errorf("bridge %s: %v", ref.Name(), err)
		}
	}()
	return conn, nil
}
