// Package all registers every shell command.
package all

import (
	_ "github.com/robotalks/openlog.go/pkg/cli/cmds/cursor"
	_ "github.com/robotalks/openlog.go/pkg/cli/cmds/files"
	_ "github.com/robotalks/openlog.go/pkg/cli/cmds/regs"
)
