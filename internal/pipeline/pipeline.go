// Package pipeline composes match/join/collapse/compute/sort/window stage
// descriptors into a single SQL plan executed against the entity store.
// Each read model declares a fixed stage list instead of hand-writing its
// own query at the call site.
package pipeline

import (
	"fmt"
	"strings"
)

// Stage is one step of a query plan. Stages are applied in declaration
// order; the compiled plan preserves that order.
type Stage interface {
	apply(p *plan) error
}

// Pipeline is an ordered stage list over a base collection.
type Pipeline struct {
	table  string
	alias  string
	stages []Stage
}

// New builds a pipeline over the named base table. The alias qualifies
// column references in subsequent stages.
func New(table, alias string, stages ...Stage) *Pipeline {
	return &Pipeline{table: table, alias: alias, stages: stages}
}

// Plan is a compiled pipeline: the windowed row query and an independent
// count query over the same post-filter row set. The count ignores window
// and ordering so the reported total never depends on pagination.
type Plan struct {
	Query     string
	Args      []any
	CountSQL  string
	CountArgs []any
}

type plan struct {
	alias     string
	selects   []string
	scalarSel []string
	joins     []string
	wheres    []string
	aggs      []string
	grouped   bool
	orderBy   []string
	skip      int64
	limit     int64
	windowed  bool
	args      *[]any
}

func (p *plan) bind(v any) string {
	*p.args = append(*p.args, v)
	return fmt.Sprintf("$%d", len(*p.args))
}

// Project selects scalar columns from the base collection. Columns must be
// alias-qualified.
type Project struct {
	Columns []string
}

func (s Project) apply(p *plan) error {
	p.selects = append(p.selects, s.Columns...)
	p.scalarSel = append(p.scalarSel, s.Columns...)
	return nil
}

// Cond is a predicate over the base collection.
type Cond interface {
	sql(p *plan) string
}

// Eq matches rows whose column equals the value.
type Eq struct {
	Column string
	Value  any
}

func (c Eq) sql(p *plan) string {
	return fmt.Sprintf("%s = %s", c.Column, p.bind(c.Value))
}

// Search matches rows where any listed column contains the query,
// case-insensitively.
type Search struct {
	Columns []string
	Query   string
}

func (c Search) sql(p *plan) string {
	pattern := p.bind("%" + c.Query + "%")
	parts := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		parts[i] = fmt.Sprintf("%s ILIKE %s", col, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// Filter narrows the base row set. An empty match yields zero rows, not an
// error.
type Filter struct {
	Conds []Cond
}

func (s Filter) apply(p *plan) error {
	for _, c := range s.Conds {
		p.wheres = append(p.wheres, c.sql(p))
	}
	return nil
}

// Join fetches related rows from a second collection by foreign-key
// equality. Columns, if any, are projected into the result with first-value
// semantics once the fan-out is collapsed.
type Join struct {
	Table   string
	Alias   string
	On      string // qualified column on the base side
	Foreign string // column name within the joined table
	Columns []string
}

func (s Join) apply(p *plan) error {
	p.joins = append(p.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s", s.Table, s.Alias, s.Alias, s.Foreign, s.On))
	p.selects = append(p.selects, s.Columns...)
	p.scalarSel = append(p.scalarSel, s.Columns...)
	return nil
}

// Aggregate is a count over a joined edge set, emitted by GroupCollapse.
type Aggregate struct {
	As      string
	CountOf string
}

// GroupCollapse reduces join fan-out back to one row per base identity:
// every scalar column selected so far becomes a grouping key (first-value
// semantics) and each aggregate counts the joined rows.
type GroupCollapse struct {
	Aggs []Aggregate
}

func (s GroupCollapse) apply(p *plan) error {
	p.grouped = true
	for _, agg := range s.Aggs {
		p.aggs = append(p.aggs, fmt.Sprintf("COUNT(%s) AS %s", agg.CountOf, agg.As))
	}
	return nil
}

// MemberFlag computes a viewer-relative boolean: true iff Value appears in
// Column across the collapsed join fan-out. A nil value (anonymous viewer)
// always collapses to false. Requires a preceding GroupCollapse.
type MemberFlag struct {
	As     string
	Column string
	Value  any
}

func (s MemberFlag) apply(p *plan) error {
	if !p.grouped {
		return fmt.Errorf("pipeline: member flag %q requires a group-collapse stage", s.As)
	}
	p.aggs = append(p.aggs, fmt.Sprintf("COALESCE(bool_or(%s = %s), false) AS %s", s.Column, p.bind(s.Value), s.As))
	return nil
}

// OwnerFlag computes a viewer-relative boolean comparing the value against
// an immutable owner column. A nil value always yields false.
type OwnerFlag struct {
	As     string
	Column string
	Value  any
}

func (s OwnerFlag) apply(p *plan) error {
	p.selects = append(p.selects, fmt.Sprintf("COALESCE(%s = %s, false) AS %s", s.Column, p.bind(s.Value), s.As))
	p.scalarSel = append(p.scalarSel, s.Column)
	return nil
}

// Sort orders results by one field. When Allowed is set, Field is looked up
// in it and anything outside the allow-list is rejected before execution;
// otherwise Field is a trusted internal column reference. Multiple Sort
// stages append secondary order terms.
type Sort struct {
	Field      string
	Descending bool
	Allowed    map[string]string
}

func (s Sort) apply(p *plan) error {
	column := s.Field
	if s.Allowed != nil {
		mapped, ok := s.Allowed[s.Field]
		if !ok {
			return fmt.Errorf("%w: %q", ErrBadSortField, s.Field)
		}
		column = mapped
	}
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}
	p.orderBy = append(p.orderBy, column+" "+dir)
	return nil
}

// Window skips Skip rows and takes at most Limit rows of the sorted result.
type Window struct {
	Skip  int64
	Limit int64
}

func (s Window) apply(p *plan) error {
	if s.Skip < 0 || s.Limit <= 0 {
		return fmt.Errorf("%w: skip %d limit %d", ErrBadWindow, s.Skip, s.Limit)
	}
	p.skip = s.Skip
	p.limit = s.Limit
	p.windowed = true
	return nil
}

// Compile renders the pipeline into its SQL plan. Stage errors (disallowed
// sort field, bad window) surface here, before anything touches the store.
func (p *Pipeline) Compile() (Plan, error) {
	var args []any
	pl := &plan{alias: p.alias, args: &args}

	for _, stage := range p.stages {
		if err := stage.apply(pl); err != nil {
			return Plan{}, err
		}
	}
	if len(pl.selects) == 0 {
		return Plan{}, fmt.Errorf("pipeline: no columns projected from %s", p.table)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(append(append([]string{}, pl.selects...), pl.aggs...), ", "))
	b.WriteString(" FROM ")
	b.WriteString(p.table)
	b.WriteString(" ")
	b.WriteString(p.alias)
	for _, join := range pl.joins {
		b.WriteString(" ")
		b.WriteString(join)
	}
	if len(pl.wheres) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(pl.wheres, " AND "))
	}
	if pl.grouped {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(dedupe(pl.scalarSel), ", "))
	}
	if len(pl.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(pl.orderBy, ", "))
	}
	if pl.windowed {
		fmt.Fprintf(&b, " OFFSET %d LIMIT %d", pl.skip, pl.limit)
	}

	countSQL, countArgs := p.compileCount()

	return Plan{Query: b.String(), Args: args, CountSQL: countSQL, CountArgs: countArgs}, nil
}

// compileCount renders the branch-count query: the same base filter, no
// joins, no window.
func (p *Pipeline) compileCount() (string, []any) {
	var args []any
	pl := &plan{alias: p.alias, args: &args}

	var conds []string
	for _, stage := range p.stages {
		filter, ok := stage.(Filter)
		if !ok {
			continue
		}
		for _, c := range filter.Conds {
			conds = append(conds, c.sql(pl))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s %s", p.table, p.alias)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	return b.String(), args
}

func dedupe(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := cols[:0:0]
	for _, col := range cols {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	return out
}
