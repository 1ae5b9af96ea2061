package dataset

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
)

type checksumEntry struct {
	metric   Metric
	key      int
	strategy Strategy
	values   []float64
}

// Checksum returns a short, stable fingerprint of the benchmark tables,
// independent of map iteration order. It is the first 6 hex characters of
// the MD5 over a canonical text form.
func (b *Benchmark) Checksum() string {
	if b == nil {
		return ""
	}

	var entries []checksumEntry
	add := func(metric Metric, t Table) {
		for key, series := range t {
			for strategy, values := range series {
				entries = append(entries, checksumEntry{metric: metric, key: key, strategy: strategy, values: values})
			}
		}
	}
	add(Throughput, b.Throughput)
	add(Latency, b.Latency)
	add(LLCMisses, b.LLCMisses)
	add(Cycles, b.Cycles)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].metric != entries[j].metric {
			return entries[i].metric < entries[j].metric
		}
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].strategy < entries[j].strategy
	})

	h := md5.New()
	fmt.Fprintf(h, "system=%q\nsizes=%v\nthreads=%v\n", b.System, b.Sizes, b.Threads)
	for _, e := range entries {
		fmt.Fprintf(h, "%s/%d/%s:", e.metric, e.key, e.strategy)
		for _, v := range e.values {
			io.WriteString(h, " "+strconv.FormatFloat(v, 'g', -1, 64))
		}
		io.WriteString(h, "\n")
	}

	return hex.EncodeToString(h.Sum(nil))[:6]
}
