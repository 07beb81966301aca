package output

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kubedos/mfexp/internal/mode"
)

func TestBuildNaming(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files, err := Build(dir, mode.XCP)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if filepath.Base(files.TraceData) != "trace-xcp.data" {
		t.Errorf("trace = %s", files.TraceData)
	}
	if filepath.Base(files.SummaryJSON) != "summary-xcp.json" {
		t.Errorf("summary = %s", files.SummaryJSON)
	}
	if filepath.Base(files.RunJSON) != "run-xcp.json" {
		t.Errorf("run = %s", files.RunJSON)
	}
	if filepath.Base(files.BundleTGZ) != "bundle-xcp.tgz" {
		t.Errorf("bundle = %s", files.BundleTGZ)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("out dir not created: %v", err)
	}
}

func TestWriteBundleTGZ(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "h1-xcp.data")
	b := filepath.Join(dir, "summary-xcp.json")
	if err := os.WriteFile(a, []byte("line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "bundle-xcp.tgz")
	// empty entries are skipped
	if err := WriteBundleTGZ(out, []string{a, "", b}); err != nil {
		t.Fatalf("WriteBundleTGZ: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gr)

	var names []string
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, h.Name)
	}
	if len(names) != 2 || names[0] != "h1-xcp.data" || names[1] != "summary-xcp.json" {
		t.Errorf("bundle entries = %v", names)
	}
}

func TestWriteBundleTGZMissingMember(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bundle.tgz")
	if err := WriteBundleTGZ(out, []string{filepath.Join(dir, "nope.data")}); err == nil {
		t.Fatal("expected error for missing member")
	}
}
