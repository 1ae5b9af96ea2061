//go:build linux

package transfer

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	enobufsBackoff = 10 * time.Microsecond

	soEEOriginZerocopy     = 5
	soEECodeZerocopyCopied = 1
)

type zeroCopySender struct {
	raw    syscall.RawConn
	oob    []byte
	stats  ZeroCopyStats
	logger *logrus.Logger
}

func newZeroCopySender(conn *net.TCPConn, logger *logrus.Logger) (Sender, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("failed to get raw connection: %w", err)
	}

	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ZEROCOPY, 1)
	}); err != nil {
		return nil, err
	}
	if sockErr != nil {
		// The kernel copies MSG_ZEROCOPY sends on sockets without SO_ZEROCOPY.
		logger.WithError(sockErr).Warn("SO_ZEROCOPY unavailable, sends will be copied")
	}

	return &zeroCopySender{
		raw:    raw,
		oob:    make([]byte, unix.CmsgSpace(int(unsafe.Sizeof(unix.SockExtendedErr{}))+unix.SizeofSockaddrInet6)),
		logger: logger,
	}, nil
}

func (s *zeroCopySender) Send(m *Message) (int, error) {
	remaining := m.Buffers()
	total := 0

	for len(remaining) > 0 {
		var n int
		var sendErr error
		err := s.raw.Write(func(fd uintptr) bool {
			n, sendErr = unix.SendmsgBuffers(int(fd), remaining, nil, nil, unix.MSG_ZEROCOPY)
			return sendErr != unix.EAGAIN
		})
		if err != nil {
			return total, err
		}

		switch {
		case errors.Is(sendErr, unix.ENOBUFS):
			// Notification backlog exceeded the socket's optmem limit.
			s.stats.Retries++
			s.drain()
			time.Sleep(enobufsBackoff)
			continue
		case sendErr != nil:
			return total, os.NewSyscallError("sendmsg", sendErr)
		}

		total += n
		remaining = advance(remaining, n)
	}

	return total, nil
}

// drain reads every pending completion notification without blocking.
func (s *zeroCopySender) drain() {
	_ = s.raw.Control(func(fd uintptr) {
		for {
			_, oobn, _, _, err := unix.Recvmsg(int(fd), nil, s.oob, unix.MSG_ERRQUEUE|unix.MSG_DONTWAIT)
			if err != nil {
				return
			}
			s.record(s.oob[:oobn])
		}
	})
}

func (s *zeroCopySender) record(oob []byte) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}
	for _, msg := range msgs {
		if len(msg.Data) < int(unsafe.Sizeof(unix.SockExtendedErr{})) {
			continue
		}
		ee := (*unix.SockExtendedErr)(unsafe.Pointer(&msg.Data[0]))
		if ee.Origin != soEEOriginZerocopy {
			continue
		}
		// Info..Data is the inclusive range of completed sends.
		count := uint64(ee.Data-ee.Info) + 1
		s.stats.Completions += count
		if ee.Code&soEECodeZerocopyCopied != 0 {
			s.stats.Copied += count
		}
	}
}

// Close drains outstanding notifications and reports the totals.
func (s *zeroCopySender) Close() ZeroCopyStats {
	s.drain()
	s.logger.WithFields(logrus.Fields{
		"completions": s.stats.Completions,
		"copied":      s.stats.Copied,
		"retries":     s.stats.Retries,
	}).Debug("Zero-copy sender finished")
	return s.stats
}
