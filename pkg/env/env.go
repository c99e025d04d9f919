// Package env provides common configuration for openlog programs.
package env

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/bus/periph"
	"github.com/robotalks/openlog.go/pkg/comm/mqtt"
	"github.com/robotalks/openlog.go/pkg/comm/stream"
	"github.com/robotalks/openlog.go/pkg/comm/websocket"
	"github.com/robotalks/openlog.go/pkg/openlog"
	"github.com/robotalks/openlog.go/pkg/sim"
)

// Config provides common options to reach a logger.
type Config struct {
	// BusURL selects the bus, e.g.
	// sim://, i2c://1, mqtt://host:port/prefix/bridge-id,
	// ws://host:port/bus, tcp://host:port, serial:///dev/ttyUSB0?baud=115200
	BusURL string
	// Addr is the device address on the bus.
	Addr bus.Addr
	// MQTTBrokerURL is used to discover bridges.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WriteDelay is the pause after each command.
	WriteDelay time.Duration
	// Trace logs every bus transfer at -v=3.
	Trace bool
}

// DefaultBaudRate is used for serial buses without baud.
const DefaultBaudRate = 115200

var defaultConfig = Config{
	BusURL:        "sim://",
	Addr:          bus.AddrDefault,
	MQTTBrokerURL: "mqtt://localhost:1883/openlog/",
	WriteDelay:    openlog.DefaultWriteDelay,
}

func init() {
	if val := os.Getenv("OPENLOG_BUS"); val != "" {
		defaultConfig.BusURL = val
	}
	if val := os.Getenv("OPENLOG_ADDR"); val != "" {
		if err := defaultConfig.Addr.Set(val); err != nil {
			glog.Warningf("OPENLOG_ADDR ignored: %v", err)
		}
	}
	if val := os.Getenv("OPENLOG_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BusURL, "bus", defaultConfig.BusURL, "Bus URL.")
	flag.Var(&defaultConfig.Addr, "addr", "Device address.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for bridge discovery.")
	flag.DurationVar(&defaultConfig.WriteDelay, "write-delay", defaultConfig.WriteDelay, "Pause after each command.")
	flag.BoolVar(&defaultConfig.Trace, "trace", defaultConfig.Trace, "Log bus transfers.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// OpenBus opens the bus selected by BusURL. Remote buses stay connected
// until ctx is done.
func (c *Config) OpenBus(ctx context.Context) (bus.Bus, error) {
	b, err := OpenBus(ctx, c.BusURL)
	if err != nil {
		return nil, err
	}
	if c.Trace {
		b = bus.NewTraced(c.BusURL, b)
	}
	return b, nil
}

// MustOpenBus opens the bus and fails on error.
func (c *Config) MustOpenBus(ctx context.Context) bus.Bus {
	b, err := c.OpenBus(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return b
}

// NewSession opens the bus and creates a Session on it.
func (c *Config) NewSession(ctx context.Context) (*openlog.Session, error) {
	b, err := c.OpenBus(ctx)
	if err != nil {
		return nil, err
	}
	s := openlog.NewSession(b)
	s.WriteDelay = c.WriteDelay
	return s, nil
}

// NewConnector creates a Connector to discover bridges.
func (c *Config) NewConnector() (*mqtt.Connector, error) {
	u, err := url.Parse(c.MQTTBrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %v", err)
	}
	switch u.Scheme {
	case "mqtt", "mqtts", "tcp", "ssl", "ws", "wss":
		return mqtt.NewConnector(c.MQTTBrokerURL)
	default:
		return nil, fmt.Errorf("unknown MQTT URL scheme: %q", u.Scheme)
	}
}

// OpenBus opens a bus by URL.
func OpenBus(ctx context.Context, busURL string) (bus.Bus, error) {
	u, err := url.Parse(busURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bus URL: %v", err)
	}
	switch u.Scheme {
	case "sim":
		return openSim(u)
	case "i2c":
		name := u.Host + u.Path
		glog.V(1).Infof("open i2c bus %q", name)
		b, err := periph.Open(name)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "mqtt", "mqtts":
		conn, err := mqtt.Dial(ctx, busURL)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case "ws", "wss":
		client, err := websocket.Dial(ctx, busURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "tcp":
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return stream.Dial(ctx, busURL, conn), nil
	case "serial":
		port, err := OpenSerial(u)
		if err != nil {
			return nil, err
		}
		return stream.Dial(ctx, busURL, port), nil
	default:
		return nil, fmt.Errorf("unknown bus URL scheme: %q", u.Scheme)
	}
}

// OpenSerial opens the serial port in a serial:// URL.
func OpenSerial(u *url.URL) (serial.Port, error) {
	mode := &serial.Mode{BaudRate: DefaultBaudRate}
	if val := u.Query().Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid baud %q: %v", val, err)
		}
		mode.BaudRate = baud
	}
	name := u.Path
	if name == "" {
		name = u.Host
	}
	glog.V(1).Infof("open serial port %s at %d", name, mode.BaudRate)
	return serial.Open(name, mode)
}

// openSim creates a simulated bus. Query options:
// addr=0x29 device address, card=false removes the card,
// firmware=2 sets the firmware major version.
func openSim(u *url.URL) (bus.Bus, error) {
	query := u.Query()
	if len(query) == 0 {
		return sim.NewDefault(), nil
	}
	addr := bus.AddrDefault
	if val := query.Get("addr"); val != "" {
		if err := addr.Set(val); err != nil {
			return nil, err
		}
	}
	d := sim.NewDevice(addr)
	if val := query.Get("card"); val != "" {
		present, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid card %q: %v", val, err)
		}
		d.CardPresent = present
	}
	if val := query.Get("firmware"); val != "" {
		major, err := strconv.ParseUint(val, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid firmware %q: %v", val, err)
		}
		d.FirmwareMajor = byte(major)
	}
	return sim.NewBus(d), nil
}
