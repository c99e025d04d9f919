package openlog

import (
	"strconv"
	"strings"
)

// Transfer sizes.
const (
	// ChunkSize is the largest transfer in either direction.
	ChunkSize = 32
	// MaxPayload is the largest text carried by one command frame.
	MaxPayload = ChunkSize - 1
)

// Sentinel bytes.
const (
	// EndOfData as first byte of a listing chunk ends the listing, inside
	// a file chunk it marks the end of the file.
	EndOfData byte = 0xFF
	// NameTerminator ends a name inside a listing chunk.
	NameTerminator byte = 0x00
	// EmptyFile as first byte of a file chunk means nothing left to read.
	EmptyFile byte = 0x00
)

// Opcode is the first byte of every command frame.
type Opcode byte

// Opcodes without a command category.
const (
	OpInterruptEnable Opcode = 4
	// OpInitialize hangs the bus when no card is inserted, it is never sent.
	OpInitialize Opcode = 5
	// OpStartPosition is accepted by the firmware but has no effect on reads.
	OpStartPosition Opcode = 10
)

// Command is implemented by the command categories.
type Command interface {
	Opcode() Opcode
	String() string
}

// Register is a single byte register read by writing its number.
type Register Opcode

// Registers.
const (
	RegID            Register = 0
	RegStatus        Register = 1
	RegFirmwareMajor Register = 2
	RegFirmwareMinor Register = 3
	RegI2CAddress    Register = 0x1E
)

// StatusCardReady is the status register bit set when a card is usable.
const StatusCardReady byte = 0x01

// TextCommand carries a text payload and expects no response,
// except readFile and list which are followed by chunk reads.
type TextCommand Opcode

// Text commands.
const (
	CmdCreateFile      TextCommand = 6
	CmdMakeDirectory   TextCommand = 7
	CmdChangeDirectory TextCommand = 8
	CmdReadFile        TextCommand = 9
	CmdOpenFile        TextCommand = 11
	CmdWriteFile       TextCommand = 12
	CmdList            TextCommand = 14
	CmdSyncFile        TextCommand = 17
)

// Int32Query carries a text payload and is answered by a 4-byte
// big-endian signed integer.
type Int32Query Opcode

// Int32 queries.
const (
	QueryFileSize          Int32Query = 13
	QueryRemove            Int32Query = 15
	QueryRemoveRecursively Int32Query = 16
)

// ParentDirectory changes to the root when sent with CmdChangeDirectory.
const ParentDirectory = ".."

var (
	registerNames = map[Register]string{
		RegID:            "id",
		RegStatus:        "status",
		RegFirmwareMajor: "firmwareMajor",
		RegFirmwareMinor: "firmwareMinor",
		RegI2CAddress:    "i2cAddress",
	}
	textCommandNames = map[TextCommand]string{
		CmdCreateFile:      "createFile",
		CmdMakeDirectory:   "makeDirectory",
		CmdChangeDirectory: "changeDirectory",
		CmdReadFile:        "readFile",
		CmdOpenFile:        "openFile",
		CmdWriteFile:       "writeFile",
		CmdList:            "list",
		CmdSyncFile:        "syncFile",
	}
	int32QueryNames = map[Int32Query]string{
		QueryFileSize:          "fileSize",
		QueryRemove:            "remove",
		QueryRemoveRecursively: "removeRecursively",
	}
)

// Opcode implements Command.
func (r Register) Opcode() Opcode { return Opcode(r) }

// String implements Command.
func (r Register) String() string { return nameOr(registerNames[r], Opcode(r)) }

// Opcode implements Command.
func (c TextCommand) Opcode() Opcode { return Opcode(c) }

// String implements Command.
func (c TextCommand) String() string { return nameOr(textCommandNames[c], Opcode(c)) }

// Opcode implements Command.
func (q Int32Query) Opcode() Opcode { return Opcode(q) }

// String implements Command.
func (q Int32Query) String() string { return nameOr(int32QueryNames[q], Opcode(q)) }

// Registers lists all readable registers.
func Registers() []Register {
	return []Register{RegID, RegStatus, RegFirmwareMajor, RegFirmwareMinor, RegI2CAddress}
}

// ParseRegister finds a register by name (case insensitive) or number.
func ParseRegister(s string) (Register, bool) {
	for reg, name := range registerNames {
		if strings.EqualFold(name, s) {
			return reg, true
		}
	}
	if n, err := strconv.ParseUint(s, 0, 8); err == nil {
		if _, ok := registerNames[Register(n)]; ok {
			return Register(n), true
		}
	}
	return 0, false
}

func nameOr(name string, op Opcode) string {
	if name != "" {
		return name
	}
	return "opcode(" + strconv.Itoa(int(op)) + ")"
}
