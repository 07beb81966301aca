package partition

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kubedos/mfexp/internal/mode"
)

var (
	// ErrTraceUnreadable marks a missing or unreadable trace file.
	ErrTraceUnreadable = errors.New("trace file unreadable")

	// ErrSnapshot marks a failed backlog snapshot copy. Callers log and
	// skip it; per-host outputs are unaffected.
	ErrSnapshot = errors.New("backlog snapshot copy failed")
)

// HostFilter pairs an output label with the raw address substring that
// selects a host's trace lines (e.g. "172.16.101.1:8554").
type HostFilter struct {
	Label string
	Addr  string
}

// Partition reads the captured trace once and writes every line containing a
// filter's address, byte for byte and in original order, to
// <label>-<mode>.data under outDir. A filter with zero matching lines still
// gets an (empty) output file. Matching is a plain substring test on raw
// bytes; trace lines are not assumed to be valid UTF-8.
func Partition(tracePath string, m mode.RunMode, filters []HostFilter, outDir string) ([]string, error) {
	f, err := os.Open(tracePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTraceUnreadable, err)
	}
	defer f.Close()

	type sink struct {
		filter HostFilter
		file   *os.File
		w      *bufio.Writer
	}

	sinks := make([]*sink, 0, len(filters))
	defer func() {
		for _, s := range sinks {
			if s.file != nil {
				_ = s.w.Flush()
				_ = s.file.Close()
			}
		}
	}()

	paths := make([]string, 0, len(filters))
	for _, flt := range filters {
		p := filepath.Join(outDir, fmt.Sprintf("%s-%s.data", flt.Label, m))
		out, err := os.Create(p)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p, err)
		}
		sinks = append(sinks, &sink{filter: flt, file: out, w: bufio.NewWriterSize(out, 64*1024)})
		paths = append(paths, p)
	}

	// trace lines can be long; raise reader buffer
	r := bufio.NewReaderSize(f, 512*1024)
	for {
		line, rerr := r.ReadBytes('\n')
		if len(line) > 0 {
			for _, s := range sinks {
				if bytes.Contains(line, []byte(s.filter.Addr)) {
					if _, werr := s.w.Write(line); werr != nil {
						return nil, fmt.Errorf("write %s: %w", s.file.Name(), werr)
					}
				}
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrTraceUnreadable, rerr)
		}
	}

	for _, s := range sinks {
		if err := s.w.Flush(); err != nil {
			return nil, fmt.Errorf("flush %s: %w", s.file.Name(), err)
		}
		if err := s.file.Close(); err != nil {
			return nil, fmt.Errorf("close %s: %w", s.file.Name(), err)
		}
		s.file = nil
	}
	return paths, nil
}

// CopySnapshot copies the auxiliary backlog snapshot to
// backlog0-<mode>.data under outDir.
func CopySnapshot(srcPath string, m mode.RunMode, outDir string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	defer src.Close()

	p := filepath.Join(outDir, fmt.Sprintf("backlog0-%s.data", m))
	dst, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSnapshot, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	return p, nil
}
