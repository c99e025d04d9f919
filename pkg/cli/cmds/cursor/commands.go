// Package cursor exposes the session state and list cursors in the shell.
package cursor

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/openlog.go/pkg/cli/sh"
	"github.com/robotalks/openlog.go/pkg/openlog"
)

// Current describes the element under a list cursor.
type Current struct {
	List   string `json:"list"`
	Index  int    `json:"index"`
	Length int    `json:"length"`
	Value  string `json:"value"`
}

func listArg(c *ishell.Context, def openlog.ListID) (openlog.ListID, bool) {
	if len(c.Args) < 1 {
		return def, true
	}
	id, ok := openlog.ParseListID(c.Args[0])
	if !ok {
		c.Err(fmt.Errorf("unknown list %q, expect patterns, names or content", c.Args[0]))
	}
	return id, ok
}

func current(s *openlog.Session, id openlog.ListID) Current {
	return Current{
		List:   id.String(),
		Index:  s.CurrentInt(id, openlog.FieldIndex),
		Length: s.CurrentInt(id, openlog.FieldLength),
		Value:  s.CurrentValue(id),
	}
}

func move(delta int) func(c *ishell.Context) {
	return sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
		id, ok := listArg(c, openlog.ListFileNames)
		if !ok {
			return
		}
		steps, err := sh.IntArg(c, 1, "STEPS", 1)
		if err != nil {
			c.Err(err)
			return
		}
		s.Session().MoveCursor(id, delta*steps)
		cur := current(s.Session(), id)
		s.Result(c, cur, fmt.Sprintf("[%d/%d] %s", cur.Index, cur.Length, cur.Value))
	})
}

var (
	// StatusCmd shows the last operation status.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			st := s.Session().Status().String()
			s.Result(c, st, st)
		}),
	}

	// PatternCmd shows search patterns or selects one.
	PatternCmd = ishell.Cmd{
		Name: "pattern",
		Help: "[STEPS]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			session := s.Session()
			if len(c.Args) > 0 {
				steps, err := sh.IntArg(c, 0, "STEPS", 0)
				if err != nil {
					c.Err(err)
					return
				}
				session.MoveCursor(openlog.ListSearchPatterns, steps)
			}
			patterns := session.Fragments(openlog.ListSearchPatterns)
			index := session.CurrentInt(openlog.ListSearchPatterns, openlog.FieldIndex)
			lines := make([]string, len(patterns))
			for n, p := range patterns {
				mark := " "
				if n == index {
					mark = "*"
				}
				lines[n] = mark + " " + p
			}
			s.Result(c, current(session, openlog.ListSearchPatterns), strings.Join(lines, "\n"))
		}),
	}

	// NextCmd moves a cursor forward.
	NextCmd = ishell.Cmd{
		Name:    "next",
		Aliases: []string{"n"},
		Help:    "[LIST] [STEPS]",
		Func:    move(1),
	}

	// PrevCmd moves a cursor backward.
	PrevCmd = ishell.Cmd{
		Name:    "prev",
		Aliases: []string{"p"},
		Help:    "[LIST] [STEPS]",
		Func:    move(-1),
	}

	// ShowCmd shows the element under a cursor.
	ShowCmd = ishell.Cmd{
		Name: "show",
		Help: "[LIST]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			id, ok := listArg(c, openlog.ListFileNames)
			if !ok {
				return
			}
			cur := current(s.Session(), id)
			s.Result(c, cur, fmt.Sprintf("[%d/%d] %s (%d bytes)", cur.Index, cur.Length, cur.Value,
				s.Session().CurrentInt(id, openlog.FieldValueLength)))
		}),
	}

	// FragmentsCmd prints a whole list.
	FragmentsCmd = ishell.Cmd{
		Name: "frags",
		Help: "[LIST]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			id, ok := listArg(c, openlog.ListFileContent)
			if !ok {
				return
			}
			frags := s.Session().Fragments(id)
			if frags == nil {
				frags = []string{}
			}
			lines := make([]string, len(frags))
			for n, frag := range frags {
				lines[n] = fmt.Sprintf("%3d %q", n, frag)
			}
			s.Result(c, frags, strings.Join(lines, "\n"))
		}),
	}

	// HelpModeCmd marks the session as showing help.
	HelpModeCmd = ishell.Cmd{
		Name: "helpmode",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			s.Session().ShowHelp()
			s.UpdatePrompt()
			c.Println(c.HelpText())
		}),
	}
)

func init() {
	sh.AddCmds(
		&StatusCmd,
		&PatternCmd,
		&NextCmd,
		&PrevCmd,
		&ShowCmd,
		&FragmentsCmd,
		&HelpModeCmd,
	)
}
