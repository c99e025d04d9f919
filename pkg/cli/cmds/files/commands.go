// Package files exposes file and directory operations in the shell.
package files

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/openlog.go/pkg/cli/sh"
	"github.com/robotalks/openlog.go/pkg/openlog"
)

// Defaults of optional arguments.
const (
	DefaultMaxNames = 16
	DefaultMaxBytes = 512
)

func nameArg(c *ishell.Context, what string) (string, bool) {
	if len(c.Args) < 1 {
		c.Err(fmt.Errorf("%s required", what))
		return "", false
	}
	return c.Args[0], true
}

func printOutcome(c *ishell.Context, s *sh.Shell, name string, outcome openlog.Outcome, err error) {
	if !s.Done(c, err) {
		return
	}
	if outcome == openlog.Rejected {
		s.Result(c, outcome.String(), fmt.Sprintf("%s: %v", outcome, openlog.CheckFileName83(name)))
		return
	}
	s.Result(c, outcome.String(), outcome.String())
}

func int32Query(fn func(*sh.Shell, string) (int32, error)) func(c *ishell.Context) {
	return sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
		name, ok := nameArg(c, "NAME")
		if !ok {
			return
		}
		val, err := fn(s, name)
		if s.Done(c, err) {
			s.Result(c, val, fmt.Sprintf("%d", val))
		}
	})
}

func textCommand(fn func(*sh.Shell, string) error) func(c *ishell.Context) {
	return sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
		if name, ok := nameArg(c, "NAME"); ok {
			s.Done(c, fn(s, name))
		}
	})
}

var (
	// DirCmd lists the current directory.
	DirCmd = ishell.Cmd{
		Name:    "dir",
		Aliases: []string{"ls"},
		Help:    "[PATTERN] [MAX]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			session := s.Session()
			pattern := session.CurrentValue(openlog.ListSearchPatterns)
			if len(c.Args) > 0 {
				pattern = c.Args[0]
			}
			limit, err := sh.IntArg(c, 1, "MAX", DefaultMaxNames)
			if err != nil {
				c.Err(err)
				return
			}
			names, err := session.ListDirectory(s.Context, s.Addr(), pattern, limit)
			if !s.Done(c, err) {
				return
			}
			if names == nil {
				names = []string{}
			}
			s.Result(c, names, strings.Join(names, "\n"))
		}),
	}

	// CatCmd reads a file.
	CatCmd = ishell.Cmd{
		Name: "cat",
		Help: "NAME [MAX-BYTES]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			name, ok := nameArg(c, "NAME")
			if !ok {
				return
			}
			limit, err := sh.IntArg(c, 1, "MAX-BYTES", DefaultMaxBytes)
			if err != nil {
				c.Err(err)
				return
			}
			session := s.Session()
			if _, err = session.ReadFile(s.Context, s.Addr(), name, limit); s.Done(c, err) {
				s.Result(c, session.Content(), session.Content())
			}
		}),
	}

	// WriteCmd appends a line to a file.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "NAME TEXT...",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			name, ok := nameArg(c, "NAME")
			if !ok {
				return
			}
			text := strings.Join(c.Args[1:], " ")
			outcome, err := s.Session().WriteFile(s.Context, s.Addr(), name, text, true)
			printOutcome(c, s, name, outcome, err)
		}),
	}

	// AppendCmd appends text to a file without line ending.
	AppendCmd = ishell.Cmd{
		Name: "append",
		Help: "NAME TEXT...",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			name, ok := nameArg(c, "NAME")
			if !ok {
				return
			}
			text := strings.Join(c.Args[1:], " ")
			outcome, err := s.Session().WriteFile(s.Context, s.Addr(), name, text, false)
			printOutcome(c, s, name, outcome, err)
		}),
	}

	// SyncCmd flushes written data to the card.
	SyncCmd = ishell.Cmd{
		Name: "sync",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			outcome, err := s.Session().SyncFile(s.Context, s.Addr())
			if s.Done(c, err) {
				s.Result(c, outcome.String(), outcome.String())
			}
		}),
	}

	// TestWriteCmd writes lines of growing length.
	TestWriteCmd = ishell.Cmd{
		Name: "testwrite",
		Help: "NAME [MAX-LEN]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			name, ok := nameArg(c, "NAME")
			if !ok {
				return
			}
			maxLen, err := sh.IntArg(c, 1, "MAX-LEN", 94)
			if err != nil {
				c.Err(err)
				return
			}
			outcome, err := s.Session().WriteLines(s.Context, s.Addr(), name, maxLen)
			printOutcome(c, s, name, outcome, err)
		}),
	}

	// SizeCmd queries the size of a file.
	SizeCmd = ishell.Cmd{
		Name: "size",
		Help: "NAME",
		Func: int32Query(func(s *sh.Shell, name string) (int32, error) {
			return s.Session().FileSize(s.Context, s.Addr(), name)
		}),
	}

	// RemoveCmd removes files.
	RemoveCmd = ishell.Cmd{
		Name: "rm",
		Help: "NAME",
		Func: int32Query(func(s *sh.Shell, name string) (int32, error) {
			return s.Session().Remove(s.Context, s.Addr(), name)
		}),
	}

	// RemoveRecursivelyCmd removes a directory with its content.
	RemoveRecursivelyCmd = ishell.Cmd{
		Name: "rmr",
		Help: "NAME",
		Func: int32Query(func(s *sh.Shell, name string) (int32, error) {
			return s.Session().RemoveRecursively(s.Context, s.Addr(), name)
		}),
	}

	// ChangeDirectoryCmd enters a directory.
	ChangeDirectoryCmd = ishell.Cmd{
		Name: "cd",
		Help: "NAME|..",
		Func: textCommand(func(s *sh.Shell, name string) error {
			return s.Session().ChangeDirectory(s.Context, s.Addr(), name)
		}),
	}

	// MakeDirectoryCmd creates a directory.
	MakeDirectoryCmd = ishell.Cmd{
		Name: "mkdir",
		Help: "NAME",
		Func: textCommand(func(s *sh.Shell, name string) error {
			return s.Session().MakeDirectory(s.Context, s.Addr(), name)
		}),
	}

	// TouchCmd creates an empty file.
	TouchCmd = ishell.Cmd{
		Name: "touch",
		Help: "NAME",
		Func: textCommand(func(s *sh.Shell, name string) error {
			return s.Session().CreateFile(s.Context, s.Addr(), name)
		}),
	}
)

func init() {
	sh.AddCmds(
		&DirCmd,
		&CatCmd,
		&WriteCmd,
		&AppendCmd,
		&SyncCmd,
		&TestWriteCmd,
		&SizeCmd,
		&RemoveCmd,
		&RemoveRecursivelyCmd,
		&ChangeDirectoryCmd,
		&MakeDirectoryCmd,
		&TouchCmd,
	)
}
