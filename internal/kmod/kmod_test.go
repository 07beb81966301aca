package kmod

import (
	"strings"
	"testing"
)

const sampleModules = `sch_mf 16384 2 - Live 0x0000000000000000
tcp_probe 12288 0 - Live 0x0000000000000000
nf_conntrack 172032 1 nf_nat, Live 0x0000000000000000
`

func TestScanModulesFound(t *testing.T) {
	for _, name := range []string{"sch_mf", "tcp_probe", "nf_conntrack"} {
		ok, err := scanModules(strings.NewReader(sampleModules), name)
		if err != nil {
			t.Fatalf("scanModules(%s): %v", name, err)
		}
		if !ok {
			t.Errorf("scanModules(%s) = false, want true", name)
		}
	}
}

func TestScanModulesNotFound(t *testing.T) {
	ok, err := scanModules(strings.NewReader(sampleModules), "sch_fq")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("sch_fq reported loaded")
	}
}

func TestScanModulesPrefixIsNotAMatch(t *testing.T) {
	// sch_mf must not match a lookup for sch_m
	ok, err := scanModules(strings.NewReader(sampleModules), "sch_m")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("prefix matched a longer module name")
	}
}

func TestScanModulesEmptyAndBlankLines(t *testing.T) {
	ok, err := scanModules(strings.NewReader("\n\n  \n"), "sch_mf")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("match in empty input")
	}
}
