package app

import (
	"fmt"
	"strings"

	"github.com/kubedos/mfexp/internal/partition"
)

// selectHosts restricts the filter table to the labels in csv. An empty csv
// keeps the full table; an unknown label is an error.
func selectHosts(filters []partition.HostFilter, csv string) ([]partition.HostFilter, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return filters, nil
	}

	byLabel := make(map[string]partition.HostFilter, len(filters))
	for _, f := range filters {
		byLabel[f.Label] = f
	}

	out := make([]partition.HostFilter, 0, len(filters))
	for _, p := range strings.Split(csv, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, ok := byLabel[p]
		if !ok {
			return nil, fmt.Errorf("unknown host %q", p)
		}
		out = append(out, f)
	}
	return out, nil
}
