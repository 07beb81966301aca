package summary

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/kubedos/mfexp/internal/partition"
)

// TraceStats is one pass of per-host accounting over a captured trace.
//
// Lines and Bytes are keyed by host label; a line matching no filter counts
// as unmatched. First/Last are the trace-relative stamps (seconds) of the
// first and last line whose leading field parsed as a float; Stamped
// reports whether any did.
type TraceStats struct {
	Lines     Counter
	Bytes     Counter
	Total     uint64
	Unmatched uint64

	First   float64
	Last    float64
	Stamped bool
}

// Scan reads the trace once and accumulates per-host line and byte counts
// for the given filters. Matching mirrors the partitioner: raw substring on
// the host's address key.
func Scan(tracePath string, filters []partition.HostFilter) (*TraceStats, error) {
	f, err := os.Open(tracePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st := &TraceStats{
		Lines: Counter{},
		Bytes: Counter{},
	}

	r := bufio.NewReaderSize(f, 512*1024)
	for {
		line, rerr := r.ReadBytes('\n')
		if len(line) > 0 {
			st.Total++
			matched := false
			for _, flt := range filters {
				if bytes.Contains(line, []byte(flt.Addr)) {
					st.Lines.Inc(flt.Label, 1)
					st.Bytes.Inc(flt.Label, uint64(len(line)))
					matched = true
				}
			}
			if !matched {
				st.Unmatched++
			}
			if sec, ok := leadingStamp(line); ok {
				if !st.Stamped {
					st.First = sec
					st.Stamped = true
				}
				st.Last = sec
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return st, nil
			}
			return nil, rerr
		}
	}
}

// leadingStamp parses the first whitespace-delimited field as the
// trace-relative timestamp tcp_probe puts at the start of each line.
func leadingStamp(line []byte) (float64, bool) {
	i := 0
	for i < len(line) && line[i] != ' ' && line[i] != '\t' && line[i] != '\n' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	sec, err := strconv.ParseFloat(string(line[:i]), 64)
	if err != nil || sec < 0 {
		return 0, false
	}
	return sec, true
}
