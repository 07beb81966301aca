package topo

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/kubedos/mfexp/internal/partition"
	"github.com/kubedos/mfexp/internal/util"
)

// A HostDesc describes one simulated host: the label used for its output
// file, its address, and whether it originates traffic (only senders get a
// per-host trace partition).
type HostDesc struct {
	Label  string `json:"label" yaml:"label"`
	Addr   string `json:"addr" yaml:"addr"`
	Sender bool   `json:"sender" yaml:"sender"`
}

// A Topology names the simulated network the router program builds and
// lists its hosts. Port is the probe port the senders stream on.
type Topology struct {
	Name  string     `json:"name" yaml:"name"`
	Port  uint16     `json:"port" yaml:"port"`
	Hosts []HostDesc `json:"hosts" yaml:"hosts"`
}

// Default returns the eight-host parking-lot topology: h1..h8 on
// 172.16.101.1..172.16.108.1, odd hosts streaming on port 8554.
func Default() *Topology {
	t := &Topology{Name: "parkinglot", Port: 8554}
	for n := 1; n <= 8; n++ {
		t.Hosts = append(t.Hosts, HostDesc{
			Label:  fmt.Sprintf("h%d", n),
			Addr:   util.HostAddr(n),
			Sender: n%2 == 1,
		})
	}
	return t
}

// ReadFromFile deserializes a topology description. The serialization
// format, json or yaml, is selected based on the file name extension.
func ReadFromFile(filename string) (*Topology, error) {
	dict, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	t := Topology{}
	if useYAML(filename) {
		err = yaml.Unmarshal(dict, &t)
	} else {
		err = json.Unmarshal(dict, &t)
	}
	if err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("topology %s: %w", filename, err)
	}
	return &t, nil
}

// WriteToFile stores the topology to the named file, serialized as json or
// yaml based on the extension of the name.
func (t *Topology) WriteToFile(filename string) error {
	var bytes []byte
	var err error
	if useYAML(filename) {
		bytes, err = yaml.Marshal(*t)
	} else {
		bytes, err = json.MarshalIndent(*t, "", "\t")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0o644)
}

// Filters derives the partitioner's host filter table from the sender
// hosts; the match key is the host's streaming endpoint.
func (t *Topology) Filters() []partition.HostFilter {
	out := make([]partition.HostFilter, 0, len(t.Hosts))
	for _, h := range t.Hosts {
		if !h.Sender {
			continue
		}
		out = append(out, partition.HostFilter{
			Label: h.Label,
			Addr:  util.Endpoint(h.Addr, t.Port),
		})
	}
	return out
}

func (t *Topology) validate() error {
	if t.Port == 0 {
		return fmt.Errorf("port missing")
	}
	seen := map[string]bool{}
	for _, h := range t.Hosts {
		if h.Label == "" {
			return fmt.Errorf("host with empty label")
		}
		if seen[h.Label] {
			return fmt.Errorf("duplicate host label %s", h.Label)
		}
		seen[h.Label] = true
		if !util.ValidAddr(h.Addr) {
			return fmt.Errorf("host %s: bad address %q", h.Label, h.Addr)
		}
	}
	return nil
}

func useYAML(filename string) bool {
	switch path.Ext(filename) {
	case ".yaml", ".YAML", ".yml":
		return true
	}
	return false
}
