// Package benchmarks holds the versioned lookup tables the configurator ranks
// and sizes parts with: relative GPU/CPU benchmark scores keyed by model name
// and fallback TDPs for parts whose catalog row carries none.
package benchmarks

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/buildwise/buildwise/pkg/parts"
)

//go:embed default.yaml
var defaultTable []byte

// CPUScore carries the two CPU metrics a workload profile can rank by.
type CPUScore struct {
	Single float64 `yaml:"single"`
	Multi  float64 `yaml:"multi"`
}

// Table is an immutable set of lookup data. Build one with Parse or Default.
type Table struct {
	Version       string              `yaml:"version"`
	GPUs          map[string]float64  `yaml:"gpus"`
	CPUs          map[string]CPUScore `yaml:"cpus"`
	SocketTDP     map[string]int      `yaml:"socket_tdp"`
	DefaultCPUTDP int                 `yaml:"default_cpu_tdp"`
	DefaultGPUTDP int                 `yaml:"default_gpu_tdp"`

	gpuKeys  []string
	cpuKeys  []string
	maxGPU   float64
	maxSCore float64
	maxMCore float64
}

// Parse decodes a YAML table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode benchmark table: %w", err)
	}
	if t.Version == "" {
		return nil, errors.New("benchmark table has no version")
	}
	t.prepare()
	return &t, nil
}

// Default returns the table compiled into the binary.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) prepare() {
	gpus := make(map[string]float64, len(t.GPUs))
	for k, v := range t.GPUs {
		gpus[normalizeName(k)] = v
		if v > t.maxGPU {
			t.maxGPU = v
		}
	}
	t.GPUs = gpus

	cpus := make(map[string]CPUScore, len(t.CPUs))
	for k, v := range t.CPUs {
		cpus[normalizeName(k)] = v
		if v.Single > t.maxSCore {
			t.maxSCore = v.Single
		}
		if v.Multi > t.maxMCore {
			t.maxMCore = v.Multi
		}
	}
	t.CPUs = cpus

	sockets := make(map[string]int, len(t.SocketTDP))
	for k, v := range t.SocketTDP {
		sockets[string(parts.CanonicalSocket(k))] = v
	}
	t.SocketTDP = sockets

	t.gpuKeys = longestFirst(t.GPUs)
	t.cpuKeys = longestFirst(t.CPUs)
}

// longestFirst orders map keys so that "rx 7900 xtx" is tried before "rx 7900".
func longestFirst[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func match(keys []string, name string) (string, bool) {
	n := normalizeName(name)
	for _, k := range keys {
		if strings.Contains(n, k) {
			return k, true
		}
	}
	return "", false
}

// GPUScore returns the model's benchmark divided by the best benchmark in the
// table, or false when no model name matches.
func (t *Table) GPUScore(name string) (float64, bool) {
	k, ok := match(t.gpuKeys, name)
	if !ok || t.maxGPU == 0 {
		return 0, false
	}
	return t.GPUs[k] / t.maxGPU, true
}

// CPUScore returns the normalized single-core or multi-thread score.
func (t *Table) CPUScore(name string, multi bool) (float64, bool) {
	k, ok := match(t.cpuKeys, name)
	if !ok {
		return 0, false
	}
	s := t.CPUs[k]
	if multi {
		if t.maxMCore == 0 || s.Multi == 0 {
			return 0, false
		}
		return s.Multi / t.maxMCore, true
	}
	if t.maxSCore == 0 || s.Single == 0 {
		return 0, false
	}
	return s.Single / t.maxSCore, true
}

// CPUTDP returns c.TDP, falling back to the socket table and then the default.
func (t *Table) CPUTDP(c parts.Component) int {
	if c.TDP > 0 {
		return c.TDP
	}
	if v, ok := t.SocketTDP[string(parts.CanonicalSocket(string(c.Socket)))]; ok {
		return v
	}
	return t.DefaultCPUTDP
}

// GPUTDP returns c.TDP or the table default.
func (t *Table) GPUTDP(c parts.Component) int {
	if c.TDP > 0 {
		return c.TDP
	}
	return t.DefaultGPUTDP
}
