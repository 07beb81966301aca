package capture

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "source")
	if err := os.WriteFile(p, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestStartMissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.data")
	_, err := Start(filepath.Join(t.TempDir(), "nope"), dest, 0)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if !errors.Is(err, ErrStart) {
		t.Errorf("error %v does not match ErrStart", err)
	}
}

func TestStartBadDestination(t *testing.T) {
	src := writeSource(t, []byte("x\n"))
	_, err := Start(src, filepath.Join(t.TempDir(), "no-such-dir", "out.data"), 0)
	if err == nil {
		t.Fatal("expected error for bad destination")
	}
	if !errors.Is(err, ErrStart) {
		t.Errorf("error %v does not match ErrStart", err)
	}
}

func TestCaptureCopiesAllBytes(t *testing.T) {
	content := []byte("1.000 172.16.101.1:8554 172.16.102.1:40001 1500\n" +
		"1.004 172.16.103.1:8554 172.16.104.1:40002 1500\n")
	src := writeSource(t, content)
	dest := filepath.Join(t.TempDir(), "trace.data")

	c, err := Start(src, dest, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("destination = %q, want %q", got, content)
	}

	n, hit := c.Stats()
	if n != uint64(len(content)) || hit {
		t.Errorf("Stats() = (%d, %v), want (%d, false)", n, hit, len(content))
	}
}

func TestStopTwice(t *testing.T) {
	content := []byte("a line\n")
	src := writeSource(t, content)
	dest := filepath.Join(t.TempDir(), "trace.data")

	c, err := Start(src, dest, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("destination corrupted after double Stop: %q", got)
	}
}

func TestMaxBytesGuardrail(t *testing.T) {
	content := bytes.Repeat([]byte("z"), 100)
	src := writeSource(t, content)
	dest := filepath.Join(t.TempDir(), "trace.data")

	c, err := Start(src, dest, 10)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Errorf("destination has %d bytes, want 10", len(got))
	}
	n, hit := c.Stats()
	if n != 10 || !hit {
		t.Errorf("Stats() = (%d, %v), want (10, true)", n, hit)
	}
}
