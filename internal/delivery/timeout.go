package delivery

import (
	"context"
	"fmt"
	"time"
)

type timeoutChannel struct {
	next    Channel
	timeout time.Duration
}

// WithTimeout bounds every Send on ch. A send still running when the timeout fires is
// abandoned and reported as a transport error.
func WithTimeout(ch Channel, timeout time.Duration) Channel {
	if timeout <= 0 {
		return ch
	}
	return &timeoutChannel{next: ch, timeout: timeout}
}

func (c *timeoutChannel) Name() string {
	return c.next.Name()
}

type sendResult struct {
	receipt *Receipt
	err     error
}

func (c *timeoutChannel) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	sendCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan sendResult, 1)
	go func() {
		receipt, err := c.next.Send(sendCtx, msg)
		done <- sendResult{receipt: receipt, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && sendCtx.Err() != nil && !isKind(res.err, KindTransport) {
			return nil, transportError(c.next.Name(), c.interrupted(ctx, res.err))
		}
		return res.receipt, res.err
	case <-sendCtx.Done():
		return nil, transportError(c.next.Name(), c.interrupted(ctx, sendCtx.Err()))
	}
}

// interrupted describes why the send stopped: the caller went away or the timeout fired.
func (c *timeoutChannel) interrupted(parent context.Context, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		return fmt.Errorf("send cancelled by caller: %w", parentErr)
	}
	return fmt.Errorf("send did not finish within %s: %w", c.timeout, err)
}
