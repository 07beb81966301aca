package summary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kubedos/mfexp/internal/partition"
)

func TestScanPerHostCounts(t *testing.T) {
	trace := "1.000 172.16.101.1:8554 a\n" +
		"1.500 172.16.103.1:8554 b\n" +
		"2.000 172.16.101.1:8554 c\n" +
		"2.500 10.0.0.1:9999 unmatched\n"
	p := filepath.Join(t.TempDir(), "trace.data")
	if err := os.WriteFile(p, []byte(trace), 0o644); err != nil {
		t.Fatal(err)
	}

	filters := []partition.HostFilter{
		{Label: "h1", Addr: "172.16.101.1:8554"},
		{Label: "h3", Addr: "172.16.103.1:8554"},
	}
	st, err := Scan(p, filters)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if st.Total != 4 {
		t.Errorf("Total = %d, want 4", st.Total)
	}
	if st.Lines["h1"] != 2 || st.Lines["h3"] != 1 {
		t.Errorf("Lines = %v", st.Lines)
	}
	if st.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1", st.Unmatched)
	}
	if !st.Stamped || st.First != 1.0 || st.Last != 2.5 {
		t.Errorf("stamps = (%v, %v, %v)", st.Stamped, st.First, st.Last)
	}
	if st.Bytes["h1"] == 0 {
		t.Error("h1 byte count missing")
	}
}

func TestScanNoStamps(t *testing.T) {
	p := filepath.Join(t.TempDir(), "trace.data")
	if err := os.WriteFile(p, []byte("garbage line\nanother\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Scan(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Stamped {
		t.Error("Stamped = true for unstamped trace")
	}
	if st.Total != 2 || st.Unmatched != 2 {
		t.Errorf("Total/Unmatched = %d/%d", st.Total, st.Unmatched)
	}
}

func TestScanMissingTrace(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestLeadingStamp(t *testing.T) {
	cases := []struct {
		line string
		sec  float64
		ok   bool
	}{
		{"1.234 rest\n", 1.234, true},
		{"0 rest\n", 0, true},
		{"-1 rest\n", 0, false},
		{"abc rest\n", 0, false},
		{"\n", 0, false},
	}
	for _, c := range cases {
		sec, ok := leadingStamp([]byte(c.line))
		if ok != c.ok || (ok && sec != c.sec) {
			t.Errorf("leadingStamp(%q) = (%v, %v)", c.line, sec, ok)
		}
	}
}
