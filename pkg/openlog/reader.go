package openlog

import (
	"bytes"
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// listingEnded is the termination predicate of directory listings.
func listingEnded(chunk []byte) bool {
	return len(chunk) == 0 || chunk[0] == EndOfData
}

// listingFragment extracts the name carried by a listing chunk.
func listingFragment(chunk []byte) string {
	if n := bytes.IndexByte(chunk, NameTerminator); n > 0 {
		return string(chunk[:n])
	}
	return string(chunk)
}

// fileEnded is the termination predicate of file reads.
func fileEnded(chunk []byte) bool {
	return len(chunk) == 0 || chunk[0] == EmptyFile
}

// fileFragment extracts the content carried by a file chunk and reports
// whether the end of file was reached inside it.
func fileFragment(chunk []byte) (string, bool) {
	if n := bytes.IndexByte(chunk, EndOfData); n > 0 {
		return string(chunk[:n]), true
	}
	return string(chunk), false
}

// ListDirectory loads at most maxCount names matching pattern into the
// file name list. The list command is always sent; no chunk is read
// when maxCount is not positive.
func (s *Session) ListDirectory(ctx context.Context, addr bus.Addr, pattern string, maxCount int) ([]string, error) {
	var names []string
	if err := s.send(ctx, addr, EncodeCommand(CmdList, pattern)); err != nil {
		return nil, err
	}
	for len(names) < maxCount {
		chunk, err := s.Bus.Read(ctx, addr, ChunkSize)
		if err != nil {
			s.lists[ListFileNames].replace(names)
			return names, err
		}
		if listingEnded(chunk) {
			break
		}
		names = append(names, listingFragment(chunk))
	}
	s.lists[ListFileNames].replace(names)
	s.status = StatusListedDirectory
	glog.V(2).Infof("%s list %q: %d names", addr, pattern, len(names))
	return s.Fragments(ListFileNames), nil
}

// ReadFile loads at most maxBytes of a file, always from its start, into
// the content list. Each fragment holds at most ChunkSize bytes.
func (s *Session) ReadFile(ctx context.Context, addr bus.Addr, filename string, maxBytes int) ([]string, error) {
	frags, err := s.readFile(ctx, addr, filename, maxBytes)
	s.lists[ListFileContent].replace(frags)
	if err != nil {
		return s.Fragments(ListFileContent), err
	}
	s.status = StatusReadFile
	glog.V(2).Infof("%s read %q: %d fragments", addr, filename, len(frags))
	return s.Fragments(ListFileContent), nil
}

func (s *Session) readFile(ctx context.Context, addr bus.Addr, filename string, maxBytes int) ([]string, error) {
	var frags []string
	if maxBytes <= 0 {
		return frags, nil
	}
	if err := s.send(ctx, addr, EncodeCommand(CmdReadFile, filename)); err != nil {
		return frags, err
	}
	chunk, err := s.Bus.Read(ctx, addr, minInt(ChunkSize, maxBytes))
	for err == nil && !fileEnded(chunk) {
		frag, eof := fileFragment(chunk)
		frags = append(frags, frag)
		if eof {
			break
		}
		remaining := maxBytes - len(frags)*ChunkSize
		if remaining <= 0 {
			break
		}
		chunk, err = s.Bus.Read(ctx, addr, minInt(ChunkSize, remaining))
	}
	return frags, err
}

// StartPosition would set the read offset of the next ReadFile. The
// firmware ignores it, so nothing is sent.
func (s *Session) StartPosition(ctx context.Context, addr bus.Addr, pos byte) error {
	return ErrNotSupported
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
