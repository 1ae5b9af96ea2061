package transfer

import (
	"fmt"
	"net"

	"zerocopy-bench/internal/dataset"

	"github.com/sirupsen/logrus"
)

// Sender writes one whole message per call.
type Sender interface {
	Send(m *Message) (int, error)
}

// NewSender returns the sender implementing strategy on conn.
func NewSender(strategy dataset.Strategy, conn *net.TCPConn, logger *logrus.Logger) (Sender, error) {
	switch strategy {
	case dataset.Baseline:
		return &copySender{conn: conn}, nil
	case dataset.OneCopy:
		return &vectorSender{conn: conn}, nil
	case dataset.ZeroCopy:
		return newZeroCopySender(conn, logger)
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// ZeroCopyStats summarizes completion notifications drained from the error queue.
type ZeroCopyStats struct {
	Completions uint64
	Copied      uint64
	Retries     uint64
}

// copySender flattens the fields into one buffer before writing.
type copySender struct {
	conn *net.TCPConn
	buf  []byte
}

func (s *copySender) Send(m *Message) (int, error) {
	s.buf = m.Flatten(s.buf)
	return s.conn.Write(s.buf)
}

// vectorSender hands the fields to the kernel in a single writev.
type vectorSender struct {
	conn *net.TCPConn
}

func (s *vectorSender) Send(m *Message) (int, error) {
	bufs := m.Buffers()
	n, err := bufs.WriteTo(s.conn)
	return int(n), err
}
