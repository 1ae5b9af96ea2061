package host

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"zerocopy-bench/internal/logging"

	"github.com/sirupsen/logrus"
)

// HostConfig describes the machine a measurement runs on.
// It is initialized once and shared.
type HostConfig struct {
	// CPU Information
	CPUVendor   string
	CPUModel    string
	LogicalCPUs int
	NumSockets  int

	// Last-level cache size in bytes, 0 when unknown
	L3CacheBytes int64

	// System Information
	Hostname      string
	OSInfo        string
	KernelVersion string
}

var (
	globalHostConfig *HostConfig
	hostConfigOnce   sync.Once
)

// GetHostConfig returns the global host configuration, reading it on first call.
func GetHostConfig() *HostConfig {
	hostConfigOnce.Do(func() {
		globalHostConfig = initializeHostConfig()
	})
	return globalHostConfig
}

func initializeHostConfig() *HostConfig {
	logger := logging.GetLogger()

	config := &HostConfig{
		LogicalCPUs:   runtime.NumCPU(),
		OSInfo:        runtime.GOOS + "/" + runtime.GOARCH,
		Hostname:      "unknown",
		KernelVersion: "unknown",
		CPUVendor:     "unknown",
		CPUModel:      "unknown",
		NumSockets:    1,
	}

	if hostname, err := os.Hostname(); err == nil {
		config.Hostname = hostname
	}

	// Get kernel version from /proc/version
	if data, err := os.ReadFile("/proc/version"); err == nil {
		version := strings.Fields(string(data))
		if len(version) >= 3 {
			config.KernelVersion = version[2]
		}
	}

	if file, err := os.Open("/proc/cpuinfo"); err == nil {
		config.parseCPUInfo(file)
		file.Close()
	}

	if size, err := l3CacheSizeFromSysfs(); err == nil {
		config.L3CacheBytes = size
	} else {
		logger.WithError(err).Debug("L3 cache size unavailable")
	}

	logger.WithFields(logrus.Fields{
		"cpu_model":    config.CPUModel,
		"logical_cpus": config.LogicalCPUs,
		"l3_cache_kb":  config.L3CacheBytes / 1024,
	}).Debug("Host configuration initialized")

	return config
}

// SystemLabel renders the host in the "System: N vCPU" form used in figure titles.
func (hc *HostConfig) SystemLabel() string {
	return fmt.Sprintf("System: %d vCPU", hc.LogicalCPUs)
}

func (hc *HostConfig) parseCPUInfo(r io.Reader) {
	physicalIDs := make(map[string]struct{})
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "vendor_id":
			if hc.CPUVendor == "unknown" || hc.CPUVendor == "" {
				hc.CPUVendor = value
			}
		case "model name":
			if hc.CPUModel == "unknown" || hc.CPUModel == "" {
				hc.CPUModel = value
			}
		case "physical id":
			physicalIDs[value] = struct{}{}
		}
	}

	// Number of sockets is the number of unique physical IDs
	if len(physicalIDs) > 0 {
		hc.NumSockets = len(physicalIDs)
	}
}

func l3CacheSizeFromSysfs() (int64, error) {
	// Some systems expose the LLC as index2
	cachePaths := []string{
		"/sys/devices/system/cpu/cpu0/cache/index3/size",
		"/sys/devices/system/cpu/cpu0/cache/index2/size",
	}

	for _, path := range cachePaths {
		if data, err := os.ReadFile(path); err == nil {
			if size, err := parseCacheSize(string(data)); err == nil {
				return size, nil
			}
		}
	}

	return 0, fmt.Errorf("could not determine L3 cache size")
}

// parseCacheSize accepts sysfs sizes like "8192K", "32M" or plain bytes.
func parseCacheSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cache size %q: %w", s, err)
	}
	return n * multiplier, nil
}
