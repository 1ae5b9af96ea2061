package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
)

// ClientResult aggregates what every receiving connection saw.
type ClientResult struct {
	Bytes   int64
	Elapsed []time.Duration
}

// Wall returns the longest per-connection elapsed time.
func (r ClientResult) Wall() time.Duration {
	var max time.Duration
	for _, d := range r.Elapsed {
		if d > max {
			max = d
		}
	}
	return max
}

// MeanElapsed returns the average per-connection elapsed time.
func (r ClientResult) MeanElapsed() time.Duration {
	if len(r.Elapsed) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range r.Elapsed {
		sum += d
	}
	return sum / time.Duration(len(r.Elapsed))
}

// RunClient opens threads connections to addr and reads each until EOF using
// a size-byte receive buffer.
func RunClient(ctx context.Context, addr string, threads, size int) (ClientResult, error) {
	if threads <= 0 {
		return ClientResult{}, fmt.Errorf("threads must be greater than 0, got %d", threads)
	}
	if size <= 0 {
		return ClientResult{}, fmt.Errorf("buffer size must be greater than 0, got %d", size)
	}

	bytesPerThread := make([]int64, threads)
	elapsed := make([]time.Duration, threads)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		i := i
		g.Go(func() error {
			n, d, err := receive(gctx, addr, size)
			if err != nil {
				return fmt.Errorf("connection %d: %w", i, err)
			}
			bytesPerThread[i] = n
			elapsed[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ClientResult{}, err
	}

	result := ClientResult{Elapsed: elapsed}
	for _, n := range bytesPerThread {
		result.Bytes += n
	}
	return result, nil
}

func receive(ctx context.Context, addr string, size int) (int64, time.Duration, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return 0, 0, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	buf := make([]byte, size)
	var total int64
	start := time.Now()
	for {
		n, err := conn.Read(buf)
		total += int64(n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return total, 0, ctx.Err()
			}
			return total, 0, err
		}
	}
	return total, time.Since(start), nil
}
