//go:build !linux

package collectors

import (
	"fmt"
	"runtime"
)

func NewPerfCollector() (Collector, error) {
	return nil, fmt.Errorf("perf events are not supported on %s", runtime.GOOS)
}
