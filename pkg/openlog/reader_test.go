package openlog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/openlog.go/pkg/bus"
)

func newTestSession() (*Session, *bus.Recorder) {
	rec := &bus.Recorder{}
	s := NewSession(rec)
	s.WriteDelay = 0
	return s, rec
}

func chunk(data string, fill byte) []byte {
	p := make([]byte, ChunkSize)
	n := copy(p, data)
	for i := n; i < len(p); i++ {
		p[i] = fill
	}
	return p
}

func nameChunk(name string) []byte {
	p := chunk(name, 0)
	if len(name)+1 < ChunkSize {
		p[len(name)+1] = 0xFF
	}
	return p
}

func TestListDirectory(t *testing.T) {
	ctx := context.Background()

	t.Run("names", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond(nameChunk("LOG"), nameChunk("CONFIG.TXT"), chunk("", 0xFF))
		names, err := s.ListDirectory(ctx, bus.AddrDefault, "*.*", 8)
		require.NoError(t, err)
		require.Equal(t, []string{"LOG", "CONFIG.TXT"}, names)
		require.Equal(t, [][]byte{{14, '*', '.', '*'}}, rec.Writes())
		require.Equal(t, []int{32, 32, 32}, rec.Reads())
		require.Equal(t, StatusListedDirectory, s.Status())
		require.Equal(t, 0, s.CurrentInt(ListFileNames, FieldIndex))
	})

	t.Run("max count", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond(nameChunk("A.TXT"), nameChunk("B.TXT"), nameChunk("C.TXT"), chunk("", 0xFF))
		names, err := s.ListDirectory(ctx, bus.AddrDefault, "*.TXT", 2)
		require.NoError(t, err)
		require.Equal(t, []string{"A.TXT", "B.TXT"}, names)
		require.Len(t, rec.Reads(), 2)
	})

	t.Run("end of listing first", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond(chunk("", 0xFF))
		names, err := s.ListDirectory(ctx, bus.AddrDefault, "*", 4)
		require.NoError(t, err)
		require.Empty(t, names)
		require.Equal(t, StatusListedDirectory, s.Status())
	})

	t.Run("empty chunk", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond([]byte{})
		names, err := s.ListDirectory(ctx, bus.AddrDefault, "*", 4)
		require.NoError(t, err)
		require.Empty(t, names)
	})

	t.Run("zero count", func(t *testing.T) {
		for _, count := range []int{0, -3} {
			s, rec := newTestSession()
			rec.Respond(nameChunk("A.TXT"))
			names, err := s.ListDirectory(ctx, bus.AddrDefault, "*", count)
			require.NoError(t, err)
			require.Empty(t, names)
			require.Equal(t, [][]byte{{14, '*'}}, rec.Writes())
			require.Empty(t, rec.Reads())
			require.Equal(t, StatusListedDirectory, s.Status())
		}
	})

	t.Run("longest terminated name", func(t *testing.T) {
		s, rec := newTestSession()
		name := strings.Repeat("L", ChunkSize-1)
		rec.Respond(nameChunk(name), chunk("", 0xFF))
		names, err := s.ListDirectory(ctx, bus.AddrDefault, "*", 4)
		require.NoError(t, err)
		require.Equal(t, []string{name}, names)
	})

	t.Run("unterminated name", func(t *testing.T) {
		s, rec := newTestSession()
		full := strings.Repeat("N", ChunkSize)
		rec.Respond([]byte(full), chunk("", 0xFF))
		names, err := s.ListDirectory(ctx, bus.AddrDefault, "*", 4)
		require.NoError(t, err)
		require.Equal(t, []string{full}, names)
	})

	t.Run("replaces previous names", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond(nameChunk("A.TXT"), nameChunk("B.TXT"), chunk("", 0xFF))
		_, err := s.ListDirectory(ctx, bus.AddrDefault, "*", 4)
		require.NoError(t, err)
		s.MoveCursor(ListFileNames, 1)
		rec.Respond(nameChunk("C.TXT"), chunk("", 0xFF))
		_, err = s.ListDirectory(ctx, bus.AddrDefault, "*", 4)
		require.NoError(t, err)
		require.Equal(t, []string{"C.TXT"}, s.Fragments(ListFileNames))
		require.Equal(t, 0, s.CurrentInt(ListFileNames, FieldIndex))
	})
}

func TestListingFragment(t *testing.T) {
	p := []byte{0x4C, 0x4F, 0x47, 0x00, 0xFF, 0xFF}
	require.Equal(t, "LOG", listingFragment(p))
	require.True(t, listingEnded([]byte{0xFF, 0x00}))
	require.True(t, listingEnded(nil))
	require.False(t, listingEnded([]byte{0x00}))
}

func TestReadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("no bytes requested", func(t *testing.T) {
		for _, max := range []int{0, -5} {
			s, rec := newTestSession()
			frags, err := s.ReadFile(ctx, bus.AddrDefault, "LOG.TXT", max)
			require.NoError(t, err)
			require.Empty(t, frags)
			require.Empty(t, rec.Transfers)
			require.Equal(t, StatusReadFile, s.Status())
		}
	})

	t.Run("end of file inside chunk", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond(chunk("hello", 0xFF), chunk("never read", 0))
		frags, err := s.ReadFile(ctx, bus.AddrDefault, "LOG.TXT", 1024)
		require.NoError(t, err)
		require.Equal(t, []string{"hello"}, frags)
		require.Equal(t, []int{32}, rec.Reads())
		require.Equal(t, [][]byte{append([]byte{9}, "LOG.TXT"...)}, rec.Writes())
	})

	t.Run("bounded by max bytes", func(t *testing.T) {
		s, rec := newTestSession()
		a, b := strings.Repeat("a", 32), strings.Repeat("b", 32)
		rec.Respond([]byte(a), []byte(b), []byte(a))
		frags, err := s.ReadFile(ctx, bus.AddrDefault, "LOG.TXT", 40)
		require.NoError(t, err)
		require.Equal(t, []string{a, strings.Repeat("b", 8)}, frags)
		require.Equal(t, []int{32, 8}, rec.Reads())
	})

	t.Run("small max bytes", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond([]byte(strings.Repeat("z", 32)))
		frags, err := s.ReadFile(ctx, bus.AddrDefault, "LOG.TXT", 5)
		require.NoError(t, err)
		require.Equal(t, []string{"zzzzz"}, frags)
		require.Equal(t, []int{5}, rec.Reads())
	})

	t.Run("empty file", func(t *testing.T) {
		s, rec := newTestSession()
		rec.Respond(append([]byte{0x00}, chunk("", 0xFF)[1:]...))
		frags, err := s.ReadFile(ctx, bus.AddrDefault, "EMPTY.TXT", 64)
		require.NoError(t, err)
		require.Empty(t, frags)
	})

	t.Run("file ends on chunk boundary", func(t *testing.T) {
		s, rec := newTestSession()
		full := strings.Repeat("q", 32)
		rec.Respond([]byte(full), append([]byte{0x00}, chunk("", 0xFF)[1:]...))
		frags, err := s.ReadFile(ctx, bus.AddrDefault, "LOG.TXT", 100)
		require.NoError(t, err)
		require.Equal(t, []string{full}, frags)
		require.Equal(t, full, s.Content())
	})

	t.Run("empty chunk", func(t *testing.T) {
		s, _ := newTestSession()
		frags, err := s.ReadFile(ctx, bus.AddrDefault, "LOG.TXT", 100)
		require.NoError(t, err)
		require.Empty(t, frags)
	})
}

func TestStartPosition(t *testing.T) {
	s, rec := newTestSession()
	require.Equal(t, ErrNotSupported, s.StartPosition(context.Background(), bus.AddrDefault, 4))
	require.Empty(t, rec.Transfers)
}
