// Package legend maps raw land-cover class codes onto the binary
// forest/non-forest domain used by the metric engine.
package legend

import (
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/terralab/landscape-cli/internal/raster"
)

// InvalidClassCodeError reports an internally inconsistent legend table:
// the same source code mapped to two different targets, or a target outside
// {0, 1}. Fatal at load time, before any site is processed.
type InvalidClassCodeError struct {
	Code   int32
	Detail string
}

func (e *InvalidClassCodeError) Error() string {
	return fmt.Sprintf("legend: invalid class code %d: %s", e.Code, e.Detail)
}

// Rule is one source→target mapping in the legend file.
type Rule struct {
	Source int32  `yaml:"source"`
	Target int32  `yaml:"target"`
	Name   string `yaml:"name,omitempty"`
}

type legendFile struct {
	Rules []Rule `yaml:"rules"`
}

// Legend is a total reclassification mapping. Codes absent from the rule
// table reclassify to the default target; an incomplete table must not
// silently drop cells.
type Legend struct {
	rules         map[int32]int32
	names         map[int32]string
	defaultTarget int32
}

// Load reads and validates a YAML legend file.
func Load(path string, defaultTarget int32) (*Legend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "legend: read %s", path)
	}

	var lf legendFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, eris.Wrapf(err, "legend: parse %s", path)
	}
	return New(lf.Rules, defaultTarget)
}

// New builds a Legend from rules, validating consistency once up front.
func New(rules []Rule, defaultTarget int32) (*Legend, error) {
	if defaultTarget != 0 && defaultTarget != 1 {
		return nil, &InvalidClassCodeError{Code: defaultTarget, Detail: "default target must be 0 or 1"}
	}

	l := &Legend{
		rules:         make(map[int32]int32, len(rules)),
		names:         make(map[int32]string, len(rules)),
		defaultTarget: defaultTarget,
	}
	for _, r := range rules {
		if r.Target != 0 && r.Target != 1 {
			return nil, &InvalidClassCodeError{Code: r.Source, Detail: fmt.Sprintf("target %d not in {0,1}", r.Target)}
		}
		if prev, dup := l.rules[r.Source]; dup && prev != r.Target {
			return nil, &InvalidClassCodeError{Code: r.Source, Detail: fmt.Sprintf("mapped to both %d and %d", prev, r.Target)}
		}
		l.rules[r.Source] = r.Target
		if r.Name != "" {
			l.names[r.Source] = r.Name
		}
	}
	return l, nil
}

// Target returns the binary class for a raw code. Total: unknown codes
// return the default target.
func (l *Legend) Target(code int32) int32 {
	if t, ok := l.rules[code]; ok {
		return t
	}
	return l.defaultTarget
}

// Rules returns the explicit rules sorted by source code, for display.
func (l *Legend) Rules() []Rule {
	out := make([]Rule, 0, len(l.rules))
	for src, tgt := range l.rules {
		out = append(out, Rule{Source: src, Target: tgt, Name: l.names[src]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// reclassNoData replaces a source nodata code that collides with the binary
// class domain. Land-cover products commonly use 0 as nodata; carrying that
// into the output would make every non-forest cell read as nodata.
const reclassNoData int32 = -1

// Reclassify returns a same-shape grid holding only {0, 1}, preserving
// nodata cells. The output nodata code is the source's unless that code is
// 0 or 1, in which case it is remapped out of band. Pure transform; the
// input grid is not touched.
func (l *Legend) Reclassify(g *raster.Grid) *raster.Grid {
	noData := g.NoData
	if noData == 0 || noData == 1 {
		noData = reclassNoData
	}
	out := raster.NewGrid(g.Cols, g.Rows, g.Transform, noData)
	for i, v := range g.Cells {
		if v == g.NoData {
			continue
		}
		out.Cells[i] = l.Target(v)
	}
	return out
}
