// Package engine executes a validated recipe against an immutable table
// and produces the bundled report. Each step runs the same pipeline:
// filter, transform, compute, post-filter; results are collected into
// ordered slots so the bundle follows the recipe's declared order no
// matter how steps are scheduled.
package engine

import (
	"reportauto/domain/table"
)

// SectionResult is the computed output of one step before assembly.
type SectionResult struct {
	OutputName string
	Header     []string
	Rows       [][]string
}

// NamedArtifact is a side output bundled next to the primary report,
// e.g. correlation_results.csv.
type NamedArtifact struct {
	Name string
	Data []byte
}

// Bundle is the full artifact set returned for one recipe execution.
type Bundle struct {
	Filename  string
	Report    []byte
	Artifacts []NamedArtifact
}

// artifactKind tags the side artifact a step contributes to.
type artifactKind int

const (
	artifactNone artifactKind = iota
	artifactCorrelation
	artifactCrosstab
)

// artifactRows is one step's contribution to a side artifact.
type artifactRows struct {
	kind   artifactKind
	title  string
	header []string
	rows   [][]string
}

// stepOutcome fills one ordered slot: either a section or the soft
// failure that replaced it.
type stepOutcome struct {
	section  *SectionResult
	artifact *artifactRows
	err      error
}

// view is a read-only slice of the dataset: the rows that survived
// filtering, with their original 1-based row numbers retained so
// observation-level output can point back at the source data.
type view struct {
	tbl    *table.Table
	rowIDs []int
}

func newView(t *table.Table) view {
	ids := make([]int, len(t.Rows))
	for i := range ids {
		ids[i] = i + 1
	}
	return view{tbl: t, rowIDs: ids}
}

func (v view) numRows() int {
	return len(v.tbl.Rows)
}

func (v view) column(idx int) []string {
	return v.tbl.Column(idx)
}
