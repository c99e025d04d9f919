package openlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name      string
		op        Opcode
		text      string
		expect    []byte
		truncated bool
	}{
		{"no payload", Opcode(RegStatus), "", []byte{1}, false},
		{"text", Opcode(CmdList), "*.TXT", []byte{14, '*', '.', 'T', 'X', 'T'}, false},
		{"max payload", Opcode(CmdWriteFile), strings.Repeat("x", 31), append([]byte{12}, strings.Repeat("x", 31)...), false},
		{"truncated", Opcode(CmdWriteFile), strings.Repeat("y", 40), append([]byte{12}, strings.Repeat("y", 31)...), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := Encode(tc.op, tc.text)
			require.Equal(t, tc.expect, f.Bytes())
			require.Equal(t, tc.truncated, f.Truncated())
			require.Equal(t, len(tc.expect), f.Len())
			require.True(t, f.Len() <= ChunkSize)
			require.Equal(t, tc.op, f.Opcode())
		})
	}
}

func TestFramePayloadIsCopied(t *testing.T) {
	f := EncodeCommand(CmdOpenFile, "LOG.TXT")
	p := f.Payload()
	p[0] = 'X'
	require.Equal(t, []byte("LOG.TXT"), f.Payload())
}

func TestCommandNames(t *testing.T) {
	require.Equal(t, "fileSize", QueryFileSize.String())
	require.Equal(t, "list", CmdList.String())
	require.Equal(t, "firmwareMajor", RegFirmwareMajor.String())
	require.Equal(t, "opcode(99)", Register(99).String())
	require.Equal(t, Opcode(16), QueryRemoveRecursively.Opcode())
}

func TestParseRegister(t *testing.T) {
	reg, ok := ParseRegister("STATUS")
	require.True(t, ok)
	require.Equal(t, RegStatus, reg)
	reg, ok = ParseRegister("0x1e")
	require.True(t, ok)
	require.Equal(t, RegI2CAddress, reg)
	_, ok = ParseRegister("5")
	require.False(t, ok)
	_, ok = ParseRegister("bogus")
	require.False(t, ok)
}
