// Package regs exposes the registers of the logger in the shell.
package regs

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/openlog.go/pkg/cli/sh"
	"github.com/robotalks/openlog.go/pkg/openlog"
)

var (
	// ReadyCmd checks whether the card is ready.
	ReadyCmd = ishell.Cmd{
		Name: "ready",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			ready, err := s.Session().CheckReady(s.Context, s.Addr())
			if s.Done(c, err) {
				s.Result(c, ready, s.Session().Status().String())
			}
		}),
	}

	// RegCmd reads registers.
	RegCmd = ishell.Cmd{
		Name: "reg",
		Help: "[REGISTER...]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			regs := openlog.Registers()
			if len(c.Args) > 0 {
				regs = regs[:0:0]
				for _, arg := range c.Args {
					reg, ok := openlog.ParseRegister(arg)
					if !ok {
						c.Err(fmt.Errorf("unknown register %q", arg))
						return
					}
					regs = append(regs, reg)
				}
			}
			values := make(map[string]byte)
			lines := make([]string, 0, len(regs))
			for _, reg := range regs {
				val, err := s.Session().ReadRegister(s.Context, s.Addr(), reg)
				if err != nil {
					c.Err(fmt.Errorf("%s: %v", reg, err))
					return
				}
				values[reg.String()] = val
				lines = append(lines, fmt.Sprintf("%-14s 0x%02X", reg, val))
			}
			s.Result(c, values, strings.Join(lines, "\n"))
		}),
	}

	// VersionCmd reads the firmware version.
	VersionCmd = ishell.Cmd{
		Name: "version",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			major, minor, err := s.Session().FirmwareVersion(s.Context, s.Addr())
			if s.Done(c, err) {
				ver := fmt.Sprintf("%d.%d", major, minor)
				s.Result(c, ver, ver)
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&ReadyCmd,
		&RegCmd,
		&VersionCmd,
	)
}
