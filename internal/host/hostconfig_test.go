package host

import (
	"strings"
	"testing"
)

func TestParseCacheSize(t *testing.T) {
	cases := map[string]int64{
		"8192K\n":  8192 * 1024,
		"32M":      32 * 1024 * 1024,
		"1048576":  1048576,
		" 512K \n": 512 * 1024,
	}
	for in, want := range cases {
		got, err := parseCacheSize(in)
		if err != nil {
			t.Fatalf("parseCacheSize(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("parseCacheSize(%q) = %d, want %d", in, got, want)
		}
	}
	if _, err := parseCacheSize("lots"); err == nil {
		t.Fatalf("expected error for non-numeric size")
	}
}

func TestParseCPUInfo(t *testing.T) {
	cpuinfo := `processor	: 0
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) Gold 6248 CPU @ 2.50GHz
physical id	: 0

processor	: 1
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) Gold 6248 CPU @ 2.50GHz
physical id	: 1
`
	hc := &HostConfig{CPUVendor: "unknown", CPUModel: "unknown", NumSockets: 1}
	hc.parseCPUInfo(strings.NewReader(cpuinfo))

	if hc.CPUVendor != "GenuineIntel" {
		t.Fatalf("unexpected vendor %q", hc.CPUVendor)
	}
	if !strings.HasPrefix(hc.CPUModel, "Intel(R) Xeon(R) Gold 6248") {
		t.Fatalf("unexpected model %q", hc.CPUModel)
	}
	if hc.NumSockets != 2 {
		t.Fatalf("expected 2 sockets, got %d", hc.NumSockets)
	}
}

func TestSystemLabel(t *testing.T) {
	hc := &HostConfig{LogicalCPUs: 16}
	if got := hc.SystemLabel(); got != "System: 16 vCPU" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestGetHostConfigIsShared(t *testing.T) {
	a := GetHostConfig()
	b := GetHostConfig()
	if a != b {
		t.Fatalf("expected the same host configuration")
	}
	if a.LogicalCPUs <= 0 {
		t.Fatalf("expected at least one CPU")
	}
}
