package transfer

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"zerocopy-bench/internal/dataset"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewMessageFields(t *testing.T) {
	msg, err := NewMessage(1024)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if len(msg.Fields()) != FieldCount {
		t.Fatalf("expected %d fields, got %d", FieldCount, len(msg.Fields()))
	}
	for i, field := range msg.Fields() {
		if len(field) != 128 {
			t.Fatalf("field %d: expected 128 bytes, got %d", i, len(field))
		}
		if !bytes.Equal(field, bytes.Repeat([]byte{'A'}, 128)) {
			t.Fatalf("field %d not filled with 'A'", i)
		}
	}
	if flat := msg.Flatten(nil); len(flat) != 1024 || flat[1023] != 'A' {
		t.Fatalf("unexpected flattened message of %d bytes", len(flat))
	}
}

func TestNewMessageRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, 4, 1001, -8} {
		if _, err := NewMessage(size); err == nil {
			t.Fatalf("expected error for size %d", size)
		}
	}
}

func TestBuffersAreIndependent(t *testing.T) {
	msg, _ := NewMessage(64)
	bufs := msg.Buffers()
	var sink bytes.Buffer
	if _, err := bufs.WriteTo(&sink); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if sink.Len() != 64 {
		t.Fatalf("expected 64 bytes, got %d", sink.Len())
	}
	if len(msg.Buffers()) != FieldCount {
		t.Fatalf("message fields consumed by WriteTo")
	}
}

func TestAdvance(t *testing.T) {
	a, b, c := []byte("abcd"), []byte("ef"), []byte("ghi")

	bufs := advance([][]byte{a, b, c}, 5)
	if len(bufs) != 2 || string(bufs[0]) != "f" || string(bufs[1]) != "ghi" {
		t.Fatalf("unexpected remainder %q", bufs)
	}
	if bufs := advance([][]byte{a, b, c}, 6); len(bufs) != 1 || string(bufs[0]) != "ghi" {
		t.Fatalf("unexpected remainder %q", bufs)
	}
	if bufs := advance([][]byte{a, b, c}, 9); len(bufs) != 0 {
		t.Fatalf("expected empty remainder, got %q", bufs)
	}
	if string(a) != "abcd" {
		t.Fatalf("advance modified the underlying bytes")
	}
}

func TestLoopbackTransferAllStrategies(t *testing.T) {
	const (
		size       = 4096
		iterations = 50
		threads    = 3
	)

	for _, strategy := range dataset.Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			srv, err := NewServer(ServerConfig{
				Address:    "127.0.0.1:0",
				Strategy:   strategy,
				Size:       size,
				Iterations: iterations,
			}, quietLogger())
			if err != nil {
				t.Fatalf("NewServer: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			serveErr := make(chan error, 1)
			go func() { serveErr <- srv.Serve(ctx) }()

			result, err := RunClient(ctx, srv.Addr().String(), threads, size)
			if err != nil {
				t.Fatalf("RunClient: %v", err)
			}
			if want := int64(threads * iterations * size); result.Bytes != want {
				t.Fatalf("expected %d bytes, got %d", want, result.Bytes)
			}
			if len(result.Elapsed) != threads {
				t.Fatalf("expected %d elapsed entries, got %d", threads, len(result.Elapsed))
			}
			if result.Wall() < result.MeanElapsed() {
				t.Fatalf("wall time %v below mean %v", result.Wall(), result.MeanElapsed())
			}

			cancel()
			if err := <-serveErr; err != nil {
				t.Fatalf("Serve: %v", err)
			}
		})
	}
}

func TestServeStopsOnClose(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Address:    "127.0.0.1:0",
		Strategy:   dataset.OneCopy,
		Size:       64,
		Iterations: 1,
	}, quietLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	srv.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after Close")
	}

	if _, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second); err == nil {
		t.Fatalf("listener still accepting after Close")
	}
}

func TestNewServerValidates(t *testing.T) {
	logger := quietLogger()
	if _, err := NewServer(ServerConfig{Address: "127.0.0.1:0", Strategy: "two-copy", Size: 64, Iterations: 1}, logger); err == nil {
		t.Fatalf("expected unknown strategy error")
	}
	if _, err := NewServer(ServerConfig{Address: "127.0.0.1:0", Strategy: dataset.Baseline, Size: 63, Iterations: 1}, logger); err == nil {
		t.Fatalf("expected size error")
	}
	if _, err := NewServer(ServerConfig{Address: "127.0.0.1:0", Strategy: dataset.Baseline, Size: 64}, logger); err == nil {
		t.Fatalf("expected iterations error")
	}
}

func TestRunClientValidates(t *testing.T) {
	if _, err := RunClient(context.Background(), "127.0.0.1:1", 0, 64); err == nil {
		t.Fatalf("expected error for zero threads")
	}
}
