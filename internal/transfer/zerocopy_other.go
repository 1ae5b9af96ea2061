//go:build !linux

package transfer

import (
	"net"

	"github.com/sirupsen/logrus"
)

func newZeroCopySender(conn *net.TCPConn, logger *logrus.Logger) (Sender, error) {
	logger.Warn("MSG_ZEROCOPY is only available on Linux, using vectored writes")
	return &vectorSender{conn: conn}, nil
}
