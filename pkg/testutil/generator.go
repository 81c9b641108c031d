// Package testutil provides deterministic fixture generators and shared
// assertions for the sheet and store tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sanchul-dev/sanchul/pkg/model"
	"github.com/sanchul-dev/sanchul/pkg/refdict"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed       int64  // Random seed for determinism (0 = use current time)
	CodePrefix string // Prefix for generated codes (default: "C")
	IlwiRatio  float64
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, CodePrefix: "C"}
}

// Generator creates deterministic catalog and row fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.CodePrefix == "" {
		cfg.CodePrefix = "C"
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator { return New(DefaultConfig()) }

var sampleNames = []string{
	"전선관", "케이블", "배선용차단기", "콘센트", "스위치",
	"접지선", "풀박스", "케이블트레이", "분전반", "조명기구",
}

var sampleUnits = []string{"m", "개", "EA", "식", "조"}

// Entries generates n reference entries with stable codes.
func (g *Generator) Entries(n int) []model.ReferenceEntry {
	out := make([]model.ReferenceEntry, 0, n)
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("%s%04d", g.cfg.CodePrefix, i)
		if g.cfg.IlwiRatio > 0 && g.rng.Float64() < g.cfg.IlwiRatio {
			code = fmt.Sprintf("I%04d", i)
		}
		name := sampleNames[i%len(sampleNames)]
		out = append(out, model.ReferenceEntry{
			ID:   i + 1,
			Name: fmt.Sprintf("%s%d", name, i),
			Spec: fmt.Sprintf("%dmm", 10+g.rng.Intn(40)),
			Unit: sampleUnits[i%len(sampleUnits)],
			Code: code,
		})
	}
	return out
}

// Dictionary builds an in-memory dictionary over generated entries.
func (g *Generator) Dictionary(n int) *refdict.Dictionary {
	return refdict.FromEntries(g.Entries(n))
}

// SubDetailRows generates n rows referencing codes from a generated
// catalog of the same size, with the header row carrying the product name.
func (g *Generator) SubDetailRows(product string, n int) []model.SubDetailRow {
	rows := make([]model.SubDetailRow, 0, n+1)
	rows = append(rows, model.SubDetailRow{List: product})
	for i := 0; i < n; i++ {
		rows = append(rows, model.SubDetailRow{
			Code:        fmt.Sprintf("%s%04d", g.cfg.CodePrefix, i),
			List:        fmt.Sprintf("%s%d 14mm", sampleNames[i%len(sampleNames)], i),
			UnitFormula: fmt.Sprintf("%d*%d", 1+g.rng.Intn(5), 1+g.rng.Intn(9)),
		})
	}
	return rows
}
