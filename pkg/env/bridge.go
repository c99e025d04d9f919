package env

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/comm"
	"github.com/robotalks/openlog.go/pkg/comm/mqtt"
	"github.com/robotalks/openlog.go/pkg/comm/stream"
	"github.com/robotalks/openlog.go/pkg/comm/websocket"
	fx "github.com/robotalks/openlog.go/pkg/framework"
)

// BridgeConfig provides options to serve a local bus remotely.
type BridgeConfig struct {
	Info comm.BridgeInfo

	// MQTTBrokerURL specifies the MQTT broker to register with.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebsocketAddr is the listen address of websocket clients.
	WebsocketAddr string
	// WebsocketPath is the HTTP path of the websocket endpoint.
	WebsocketPath string
	// TCPAddr is the listen address of stream clients.
	TCPAddr string
	// SerialURL is a serial port to serve, e.g. serial:///dev/ttyGS0.
	SerialURL string
}

var defaultBridgeConfig = BridgeConfig{
	MQTTBrokerURL: "mqtt://localhost:1883/openlog/",
	WebsocketPath: "/bus",
}

func init() {
	if val := os.Getenv("OPENLOG_MQTT_URL"); val != "" {
		defaultBridgeConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("OPENLOG_ID"); val != "" {
		defaultBridgeConfig.Info.Ref.ID = val
	} else {
		defaultBridgeConfig.Info.Ref.ID = MachineID()
	}
}

// SetupBridgeFlags sets command line flags.
func SetupBridgeFlags() {
	flag.StringVar(&defaultBridgeConfig.Info.Ref.ID, "id", defaultBridgeConfig.Info.Ref.ID, "Bridge ID")
	flag.StringVar(&defaultBridgeConfig.Info.Meta.Description, "desc", defaultBridgeConfig.Info.Meta.Description, "Bridge description")
	flag.StringVar(&defaultBridgeConfig.MQTTBrokerURL, "bridge-mqtt", defaultBridgeConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultBridgeConfig.WebsocketAddr, "ws-listen", defaultBridgeConfig.WebsocketAddr, "Websocket listen address, empty to disable")
	flag.StringVar(&defaultBridgeConfig.WebsocketPath, "ws-path", defaultBridgeConfig.WebsocketPath, "Websocket path")
	flag.StringVar(&defaultBridgeConfig.TCPAddr, "tcp-listen", defaultBridgeConfig.TCPAddr, "TCP listen address, empty to disable")
	flag.StringVar(&defaultBridgeConfig.SerialURL, "serial", defaultBridgeConfig.SerialURL, "Serial port URL to serve, empty to disable")
}

// DefaultBridge gets default bridge config.
func DefaultBridge() *BridgeConfig {
	return &defaultBridgeConfig
}

// NewBridgeConfig creates a BridgeConfig with default configurations.
func NewBridgeConfig() *BridgeConfig {
	conf := defaultBridgeConfig
	return &conf
}

// MachineID retrieves the unique ID identifying the machine.
// The ID is hashed so it can be published.
func MachineID() string {
	id, err := machineid.ProtectedID("openlog")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		host, _ := os.Hostname()
		return host
	}
	return id[:12]
}

// NewBridges creates the runners serving b on every enabled transport.
func (c *BridgeConfig) NewBridges(b bus.Bus) ([]fx.Runnable, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("bridge id must be specified")
	}
	b = bus.NewSerialized(b)
	var runners []fx.Runnable
	if c.MQTTBrokerURL != "" {
		bridge, err := mqtt.NewBridge(c.MQTTBrokerURL, c.Info, b)
		if err != nil {
			return nil, fmt.Errorf("create MQTT bridge error: %v", err)
		}
		runners = append(runners, bridge)
	}
	if c.WebsocketAddr != "" {
		runners = append(runners, fx.NamedRun("websocket", c.websocketRunner(b)))
	}
	if c.TCPAddr != "" {
		runners = append(runners, fx.NamedRun("tcp", fx.RunnableFunc(func(ctx context.Context) error {
			l, err := net.Listen("tcp", c.TCPAddr)
			if err != nil {
				return err
			}
			glog.Infof("serving tcp on %s", l.Addr())
			return stream.Serve(ctx, l, b)
		})))
	}
	if c.SerialURL != "" {
		u, err := url.Parse(c.SerialURL)
		if err != nil {
			return nil, fmt.Errorf("invalid serial URL: %v", err)
		}
		runners = append(runners, fx.NamedRun("serial", fx.RunnableFunc(func(ctx context.Context) error {
			port, err := OpenSerial(u)
			if err != nil {
				return err
			}
			glog.Infof("serving serial on %s", c.SerialURL)
			return comm.NewServer(b, stream.New(port)).Run(ctx)
		})))
	}
	if len(runners) == 0 {
		return nil, fmt.Errorf("at least one transport is required")
	}
	return runners, nil
}

// MustNewBridges creates bridges and fails on error.
func (c *BridgeConfig) MustNewBridges(b bus.Bus) []fx.Runnable {
	runners, err := c.NewBridges(b)
	if err != nil {
		log.Fatalln(err)
	}
	return runners
}

func (c *BridgeConfig) websocketRunner(b bus.Bus) fx.Runnable {
	return fx.RunnableFunc(func(ctx context.Context) error {
		mux := http.NewServeMux()
		mux.Handle(c.WebsocketPath, websocket.Handler(b))
		srv := &http.Server{Addr: c.WebsocketAddr, Handler: mux}
		glog.Infof("serving websocket on %s%s", c.WebsocketAddr, c.WebsocketPath)
		err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	})
}
