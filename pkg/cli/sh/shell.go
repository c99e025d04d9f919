// Package sh provides the interactive shell driving a logger session.
package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/comm"
	"github.com/robotalks/openlog.go/pkg/env"
	"github.com/robotalks/openlog.go/pkg/openlog"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Config  *env.Config
	Conn    *Conn
	Context context.Context
}

// Conn is an open bus with a session on it.
type Conn struct {
	BusURL  string
	Addr    bus.Addr
	Session *openlog.Session
	Cancel  func()
}

const (
	shellKey       = "$shell"
	unopenedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&BridgesCmd,
		&OpenCmd,
		&CloseCmd,
		&AddrCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Config:  conf,
		Context: context.Background(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unopenedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an open bus.
func MustBeOpen(fn func(c *ishell.Context, s *Shell)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Conn == nil {
			c.Err(fmt.Errorf("bus not open"))
			return
		}
		fn(c, s)
	}
}

// Session returns the session of the open bus.
func (s *Shell) Session() *openlog.Session {
	return s.Conn.Session
}

// Addr returns the device address in use.
func (s *Shell) Addr() bus.Addr {
	return s.Conn.Addr
}

// Open opens a bus and starts a new session on it.
func (s *Shell) Open(busURL string) error {
	conf := *s.Config
	conf.BusURL = busURL
	ctx, cancel := context.WithCancel(s.Context)
	session, err := conf.NewSession(ctx)
	if err != nil {
		cancel()
		return err
	}
	s.Close()
	s.Conn = &Conn{BusURL: busURL, Addr: conf.Addr, Session: session, Cancel: cancel}
	s.UpdatePrompt()
	return nil
}

// Close closes the open bus.
func (s *Shell) Close() {
	if s.Conn != nil {
		s.Conn.Cancel()
		s.Conn = nil
		s.Shell.SetPrompt(unopenedPrompt)
	}
}

// UpdatePrompt shows the bus, address and status in the prompt.
func (s *Shell) UpdatePrompt() {
	if s.Conn == nil {
		s.Shell.SetPrompt(unopenedPrompt)
		return
	}
	s.Shell.SetPrompt(fmt.Sprintf("%s@%s [%s] > ", s.Conn.Addr, s.Conn.BusURL, s.Conn.Session.Status()))
}

// Result prints a command result, as JSON when requested.
func (s *Shell) Result(c *ishell.Context, val interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(val)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Done finishes a command: prints err or refreshes the prompt.
func (s *Shell) Done(c *ishell.Context, err error) bool {
	if err != nil {
		c.Err(err)
		return false
	}
	s.UpdatePrompt()
	return true
}

// FormatInfo prints BridgeInfo into friendly string for display.
func FormatInfo(info comm.BridgeInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	if info.Meta.Bus != "" {
		fmt.Fprintf(&w, " (%s)", info.Meta.Bus)
	}
	return w.String()
}

// DiscoverBridges lists bridges registered on the MQTT broker.
func (s *Shell) DiscoverBridges() ([]comm.BridgeInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Discover(s.Context)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Config.BusURL != "" {
		if err := s.Open(s.Config.BusURL); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.BusURL, err)
		}
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// IntArg parses an optional integer argument.
func IntArg(c *ishell.Context, n int, name string, def int) (int, error) {
	if len(c.Args) <= n {
		return def, nil
	}
	val, err := strconv.Atoi(c.Args[n])
	if err != nil {
		return def, fmt.Errorf("invalid %s: %v", name, err)
	}
	return val, nil
}

var (
	// BridgesCmd discovers bridges.
	BridgesCmd = ishell.Cmd{
		Name:    "bridges",
		Aliases: []string{"discover"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverBridges()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					infoList = []comm.BridgeInfo{}
				}
				s.Result(c, infoList, "")
				return
			}
			if len(infoList) == 0 {
				c.Println("No bridges found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// OpenCmd opens a bus.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "BUS-URL",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("BUS-URL required"))
				return
			}
			ShellFrom(c).Done(c, ShellFrom(c).Open(c.Args[0]))
		},
	}

	// CloseCmd closes the open bus.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// AddrCmd shows or sets the device address.
	AddrCmd = ishell.Cmd{
		Name: "addr",
		Help: "[ADDRESS]",
		Func: MustBeOpen(func(c *ishell.Context, s *Shell) {
			if len(c.Args) > 0 {
				if !s.Done(c, s.Conn.Addr.Set(c.Args[0])) {
					return
				}
			}
			s.Result(c, byte(s.Conn.Addr), s.Conn.Addr.String())
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).Run(flag.Args()...)
}
