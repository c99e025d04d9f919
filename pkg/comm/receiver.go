package comm

import (
	"context"
	"io"

	fx "github.com/robotalks/openlog.go/pkg/framework"
)

// receive runs the transport if it is Runnable and feeds every received
// packet to handle until the transport fails, handle fails or ctx is done.
func receive(ctx context.Context, rw PacketReadWriter, handle func([]byte) error) error {
	loop := func() error {
		for {
			pkt, err := rw.ReadPacket()
			if err != nil {
				return err
			}
			if err = handle(pkt); err != nil {
				return err
			}
		}
	}
	runner := fx.NewRunnerWith(ctx)
	defer runner.Stop()
	if runnable, ok := rw.(fx.Runnable); ok {
		runner.Go(fx.NamedRun("transport", runnable))
	}
	runner.Go(fx.NamedRun("receiver", fx.RunnableFunc(func(ctx context.Context) error {
		// a transport may keep running after the receiver quits
		defer runner.Stop()
		if closer, ok := rw.(io.Closer); ok {
			return fx.RunWithContextCloser(ctx, closer, loop)
		}
		return fx.RunWithContext(ctx, loop)
	})))
	return runner.Wait()
}
