package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kubedos/mfexp/internal/mode"
)

// Files holds the fixed per-run artifact paths. Per-host partition files are
// named by the partitioner; everything here carries the same single mode tag.
type Files struct {
	TraceData   string
	SummaryJSON string
	RunJSON     string
	BundleTGZ   string
}

func Build(outDir string, m mode.RunMode) (Files, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Files{}, err
	}
	return Files{
		TraceData:   filepath.Join(outDir, fmt.Sprintf("trace-%s.data", m)),
		SummaryJSON: filepath.Join(outDir, fmt.Sprintf("summary-%s.json", m)),
		RunJSON:     filepath.Join(outDir, fmt.Sprintf("run-%s.json", m)),
		BundleTGZ:   filepath.Join(outDir, fmt.Sprintf("bundle-%s.tgz", m)),
	}, nil
}
