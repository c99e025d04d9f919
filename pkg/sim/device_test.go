package sim

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/openlog"
)

func newSession(b bus.Bus) *openlog.Session {
	s := openlog.NewSession(b)
	s.WriteDelay = 0
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, text := range []string{
		"",
		"hello",
		strings.Repeat("x", 30),
		strings.Repeat("0123456789", 7),
	} {
		d := NewDevice(bus.AddrDefault)
		s := newSession(NewBus(d))
		outcome, err := s.WriteFile(ctx, bus.AddrDefault, "TRIP.TXT", text, true)
		require.NoError(t, err)
		require.Equal(t, openlog.Performed, outcome)
		data, ok := d.File("TRIP.TXT")
		require.True(t, ok)
		require.Equal(t, text+"\r\n", string(data))

		frags, err := s.ReadFile(ctx, bus.AddrDefault, "TRIP.TXT", len(text)+2)
		require.NoError(t, err)
		require.Equal(t, text+"\r\n", strings.Join(frags, ""))
		require.Equal(t, text+"\r\n", s.Content())
		require.Equal(t, openlog.StatusReadFile, s.Status())
	}
}

func TestReadMissingFile(t *testing.T) {
	s := newSession(NewDefault())
	frags, err := s.ReadFile(context.Background(), bus.AddrDefault, "NONE.TXT", 64)
	require.NoError(t, err)
	require.Empty(t, frags)
}

func TestAddFileAtRoot(t *testing.T) {
	d := NewDevice(bus.AddrDefault).
		AddFile("A.TXT", []byte("a")).
		AddFile("./B.TXT", []byte("b")).
		AddFile("LOGS/C.TXT", []byte("c"))
	root := d.Root()
	require.Len(t, root.Children, 3)
	require.Nil(t, root.Lookup("."))
	require.NotNil(t, root.Lookup("A.TXT"))
	require.NotNil(t, root.Lookup("B.TXT"))
	logs := root.Lookup("LOGS")
	require.NotNil(t, logs)
	require.True(t, logs.Dir)
	require.NotNil(t, logs.Lookup("C.TXT"))
}

func TestDefaultCard(t *testing.T) {
	ctx := context.Background()
	s := newSession(NewDefault())

	ready, err := s.CheckReady(ctx, bus.AddrDefault)
	require.NoError(t, err)
	require.True(t, ready)

	names, err := s.ListDirectory(ctx, bus.AddrDefault, "*", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"LOG00001.TXT", "CONFIG.TXT", "LOGS/"}, names)

	names, err = s.ListDirectory(ctx, bus.AddrDefault, "*.TXT", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"LOG00001.TXT", "CONFIG.TXT"}, names)

	_, err = s.ReadFile(ctx, bus.AddrDefault, "CONFIG.TXT", 64)
	require.NoError(t, err)
	require.Equal(t, "9600,26,3,0,1,1,0\r\n", s.Content())

	size, err := s.FileSize(ctx, bus.AddrDefault, "LOG00001.TXT")
	require.NoError(t, err)
	require.Equal(t, int32(len("boot\r\n")), size)
}

func TestListing(t *testing.T) {
	ctx := context.Background()
	d := NewDevice(bus.AddrDefault).
		AddFile("A.TXT", []byte("a")).
		AddFile("B.LOG", []byte("b")).
		AddDir("LOGS")
	s := newSession(NewBus(d))

	names, err := s.ListDirectory(ctx, bus.AddrDefault, "*.TXT", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"A.TXT"}, names)

	names, err = s.ListDirectory(ctx, bus.AddrDefault, "*", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"A.TXT", "B.LOG", "LOGS/"}, names)

	names, err = s.ListDirectory(ctx, bus.AddrDefault, "*/", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"LOGS/"}, names)

	names, err = s.ListDirectory(ctx, bus.AddrDefault, "*", 2)
	require.NoError(t, err)
	require.Len(t, names, 2)
}

func TestDirectories(t *testing.T) {
	ctx := context.Background()
	d := NewDevice(bus.AddrDefault)
	s := newSession(NewBus(d))
	require.NoError(t, s.MakeDirectory(ctx, bus.AddrDefault, "LOGS"))
	require.NoError(t, s.ChangeDirectory(ctx, bus.AddrDefault, "LOGS"))
	_, err := s.WriteFile(ctx, bus.AddrDefault, "IN.TXT", "inner", false)
	require.NoError(t, err)
	require.NoError(t, s.ChangeDirectory(ctx, bus.AddrDefault, openlog.ParentDirectory))
	require.NoError(t, s.CreateFile(ctx, bus.AddrDefault, "TOP.TXT"))

	data, ok := d.File("LOGS/IN.TXT")
	require.True(t, ok)
	require.Equal(t, "inner", string(data))
	data, ok = d.File("TOP.TXT")
	require.True(t, ok)
	require.Empty(t, data)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	d := NewDevice(bus.AddrDefault).
		AddFile("A.TXT", []byte("12345")).
		AddFile("B.TXT", nil).
		AddFile("LOGS/C.TXT", []byte("c")).
		AddFile("LOGS/D.TXT", []byte("d"))
	s := newSession(NewBus(d))

	size, err := s.FileSize(ctx, bus.AddrDefault, "A.TXT")
	require.NoError(t, err)
	require.Equal(t, int32(5), size)
	size, err = s.FileSize(ctx, bus.AddrDefault, "NONE.TXT")
	require.NoError(t, err)
	require.Equal(t, int32(-1), size)

	n, err := s.Remove(ctx, bus.AddrDefault, "NONE.TXT")
	require.NoError(t, err)
	require.Equal(t, int32(-1), n)
	n, err = s.Remove(ctx, bus.AddrDefault, "*.TXT")
	require.NoError(t, err)
	require.Equal(t, int32(2), n)

	n, err = s.RemoveRecursively(ctx, bus.AddrDefault, "LOGS")
	require.NoError(t, err)
	require.Equal(t, int32(3), n)
	require.Empty(t, d.Root().Children)
}

func TestNoCard(t *testing.T) {
	ctx := context.Background()
	d := NewDevice(bus.AddrDefault)
	d.CardPresent = false
	b := NewBus(d)
	s := newSession(b)

	ready, err := s.CheckReady(ctx, bus.AddrDefault)
	require.NoError(t, err)
	require.False(t, ready)
	require.Equal(t, openlog.StatusErrorNoCard, s.Status())

	names, err := s.ListDirectory(ctx, bus.AddrDefault, "*", 4)
	require.NoError(t, err)
	require.Empty(t, names)

	require.Equal(t, ErrBusHung, b.Write(ctx, bus.AddrDefault, []byte{byte(openlog.OpInitialize)}))
	_, err = s.CheckReady(ctx, bus.AddrDefault)
	require.Equal(t, ErrBusHung, err)
}

func TestFirmwareSync(t *testing.T) {
	ctx := context.Background()
	d := NewDevice(bus.AddrDefault)
	d.FirmwareMajor = 2
	s := newSession(NewBus(d))
	outcome, err := s.SyncFile(ctx, bus.AddrDefault)
	require.NoError(t, err)
	require.Equal(t, openlog.Skipped, outcome)
	require.Zero(t, d.Syncs)

	d = NewDevice(bus.AddrAlternate)
	s = newSession(NewBus(d))
	outcome, err = s.SyncFile(ctx, bus.AddrAlternate)
	require.NoError(t, err)
	require.Equal(t, openlog.Performed, outcome)
	require.Equal(t, 1, d.Syncs)
}

func TestRegisters(t *testing.T) {
	ctx := context.Background()
	s := newSession(NewDefault())
	id, err := s.ReadRegister(ctx, bus.AddrDefault, openlog.RegID)
	require.NoError(t, err)
	require.Equal(t, DefaultID, id)
	addr, err := s.ReadRegister(ctx, bus.AddrDefault, openlog.RegI2CAddress)
	require.NoError(t, err)
	require.Equal(t, byte(bus.AddrDefault), addr)
	major, minor, err := s.FirmwareVersion(ctx, bus.AddrDefault)
	require.NoError(t, err)
	require.Equal(t, DefaultFirmwareMajor, major)
	require.Equal(t, DefaultFirmwareMinor, minor)
}

func TestNoDevice(t *testing.T) {
	ctx := context.Background()
	s := newSession(NewDefault())
	_, err := s.CheckReady(ctx, bus.AddrAlternate)
	require.Equal(t, ErrNoDevice, err)
	require.Equal(t, openlog.StatusInit, s.Status())
	require.Equal(t, []bus.Addr{bus.AddrDefault}, NewDefault().Addrs())
}
