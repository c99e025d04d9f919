package bus

import (
	"context"

	"github.com/golang/glog"
)

// Traced logs every transfer of the wrapped Bus.
type Traced struct {
	Bus
	Name string
}

// NewTraced wraps b.
func NewTraced(name string, b Bus) *Traced {
	return &Traced{Bus: b, Name: name}
}

// Write implements Bus.
func (t *Traced) Write(ctx context.Context, addr Addr, p []byte) error {
	err := t.Bus.Write(ctx, addr, p)
	if glog.V(3) {
		glog.Infof("%s W %s % X err=%v", t.Name, addr, p, err)
	}
	return err
}

// Read implements Bus.
func (t *Traced) Read(ctx context.Context, addr Addr, n int) ([]byte, error) {
	p, err := t.Bus.Read(ctx, addr, n)
	if glog.V(3) {
		glog.Infof("%s R %s [%d] % X err=%v", t.Name, addr, n, p, err)
	}
	return p, err
}
