package bus

import (
	"context"
	"sync"
)

// Transfer is a single recorded bus transfer.
type Transfer struct {
	Write bool
	Addr  Addr
	Data  []byte
	Size  int
}

// Recorder is an in-memory Bus which records writes and replays
// queued responses for reads. Reads beyond the queue return empty chunks.
type Recorder struct {
	Transfers []Transfer

	responses [][]byte
	lock      sync.Mutex
}

// Respond queues responses for subsequent reads.
func (r *Recorder) Respond(chunks ...[]byte) *Recorder {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.responses = append(r.responses, chunks...)
	return r
}

// Write implements Bus.
func (r *Recorder) Write(ctx context.Context, addr Addr, p []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Transfers = append(r.Transfers, Transfer{Write: true, Addr: addr, Data: append([]byte(nil), p...)})
	return nil
}

// Read implements Bus. The response is truncated to n bytes.
func (r *Recorder) Read(ctx context.Context, addr Addr, n int) ([]byte, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var p []byte
	if len(r.responses) > 0 {
		p, r.responses = r.responses[0], r.responses[1:]
		if len(p) > n {
			p = p[:n]
		}
	}
	r.Transfers = append(r.Transfers, Transfer{Addr: addr, Data: p, Size: n})
	return p, nil
}

// Writes returns recorded write payloads in order.
func (r *Recorder) Writes() [][]byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	var writes [][]byte
	for _, t := range r.Transfers {
		if t.Write {
			writes = append(writes, t.Data)
		}
	}
	return writes
}

// Reads returns the requested sizes of recorded reads in order.
func (r *Recorder) Reads() []int {
	r.lock.Lock()
	defer r.lock.Unlock()
	var sizes []int
	for _, t := range r.Transfers {
		if !t.Write {
			sizes = append(sizes, t.Size)
		}
	}
	return sizes
}
