package bus

import (
	"context"
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAddr(t *testing.T) {
	testCases := []struct {
		in    string
		addr  Addr
		valid bool
	}{
		{"0x2A", AddrDefault, true},
		{"41", AddrAlternate, true},
		{"0x7F", 0x7F, true},
		{"0x80", 0, false},
		{"bus", 0, false},
	}
	for _, tc := range testCases {
		addr, err := ParseAddr(tc.in)
		if !tc.valid {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.addr, addr)
	}
	require.Equal(t, "0x29", AddrAlternate.String())
}

func TestAddrFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	addr := AddrDefault
	fs.Var(&addr, "addr", "address")
	require.NoError(t, fs.Parse([]string{"-addr", "0x29"}))
	require.Equal(t, AddrAlternate, addr)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	rec := (&Recorder{}).Respond([]byte{1, 2, 3})
	b := NewSerialized(NewTraced("test", rec))
	require.NoError(t, b.Write(ctx, AddrDefault, []byte{9}))
	p, err := b.Read(ctx, AddrDefault, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, p)
	p, err = b.Read(ctx, AddrDefault, 2)
	require.NoError(t, err)
	require.Empty(t, p)
	require.Equal(t, [][]byte{{9}}, rec.Writes())
	require.Equal(t, []int{2, 2}, rec.Reads())
}
