package multiplets

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
	"github.com/katalvlaran/kpartite/metrics"
)

const (
	// DefaultMaxGroups is the group cap applied unless overridden.
	DefaultMaxGroups = 10

	// DefaultIndexColumn names the internal row-index column.
	DefaultIndexColumn = "_index"

	// DefaultWeightColumn names the hyperedge weight column.
	DefaultWeightColumn = "_distance"
)

// Options configures a Session.
//
// MaxGroups   – maximum number of groups; ≤ 0 disables the cap. Default 10.
// IndexColumn – internal row-index column name. Default "_index".
// Logger      – structured logger. Default zap.NewNop().
// Metrics     – optional Prometheus registry; nil disables instrumentation.
type Options struct {
	MaxGroups   int
	IndexColumn string
	Logger      *zap.Logger
	Metrics     *metrics.Registry
}

// Option represents a functional option for configuring New.
type Option func(*Options)

// DefaultOptions returns the defaults documented on Options.
func DefaultOptions() Options {
	return Options{
		MaxGroups:   DefaultMaxGroups,
		IndexColumn: DefaultIndexColumn,
		Logger:      zap.NewNop(),
	}
}

// WithMaxGroups overrides the group cap.
func WithMaxGroups(n int) Option {
	return func(o *Options) {
		o.MaxGroups = n
	}
}

// WithoutGroupCap disables the group cap.
func WithoutGroupCap() Option {
	return func(o *Options) {
		o.MaxGroups = 0
	}
}

// WithIndexColumn renames the internal row-index column, for inputs that
// already use "_index".
func WithIndexColumn(name string) Option {
	return func(o *Options) {
		o.IndexColumn = name
	}
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *Options) {
		o.Metrics = r
	}
}

// Group is one part of the partition.
type Group struct {
	// Label is the group column value; null for the missing-label group.
	Label frame.Value
	// Vertices holds the group's entities without the group column. With
	// exactly two groups it also carries the row-index column.
	Vertices *frame.Table
}

// Session holds the partitioned entities and the last built hyperedges.
// A Session is owned by one goroutine.
type Session struct {
	id       string
	idCol    string
	groupCol string
	indexCol string
	groups   []Group

	log     *zap.Logger
	metrics *metrics.Registry

	// exprWarned is set by the first invalid expression and never reset.
	exprWarned bool
	warnings   []Warning

	weightCol  string
	edges      []Edge
	hyperedges *frame.Table
}

// New validates entities and partitions them by groupCol.
//
// Groups are ordered by label (frame.Compare); a null label sorts last.
// When exactly two groups exist, every vertex table gains a dense 0-based
// row index (Options.IndexColumn) used by the assignment reduction.
//
// Errors (all wrap ErrConfiguration): ErrEmptyInput, ErrMissingColumn,
// ErrNullID, ErrDuplicateID, ErrSingleGroup, ErrTooManyGroups.
func New(t *frame.Table, idCol, groupCol string, opts ...Option) (*Session, error) {
	const op = "New"
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if t.Height() == 0 {
		return nil, opErr(op, ErrEmptyInput)
	}
	for _, c := range []string{idCol, groupCol} {
		if !t.Has(c) {
			return nil, opErr(op, fmt.Errorf("%w %q", ErrMissingColumn, c))
		}
	}
	if idCol == groupCol {
		return nil, opErr(op, fmt.Errorf("%w: id and group column are both %q", ErrConfiguration, idCol))
	}
	if err := checkIDs(t, idCol); err != nil {
		return nil, opErr(op, err)
	}

	parts, err := t.PartitionBy(groupCol)
	if err != nil {
		return nil, opErr(op, err)
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return frame.Compare(parts[i].Key, parts[j].Key) < 0
	})
	switch {
	case len(parts) == 1:
		return nil, opErr(op, fmt.Errorf("%w: by %q", ErrSingleGroup, groupCol))
	case o.MaxGroups > 0 && len(parts) > o.MaxGroups:
		return nil, opErr(op, fmt.Errorf("%w: by %q has %d parts, cap is %d", ErrTooManyGroups, groupCol, len(parts), o.MaxGroups))
	}

	s := &Session{
		id:        uuid.NewString(),
		idCol:     idCol,
		groupCol:  groupCol,
		indexCol:  o.IndexColumn,
		groups:    make([]Group, len(parts)),
		metrics:   o.Metrics,
		weightCol: DefaultWeightColumn,
	}
	for i, p := range parts {
		v := p.Table
		if len(parts) == 2 {
			if v, err = v.WithRowIndex(s.indexCol); err != nil {
				return nil, opErr(op, fmt.Errorf("%w: index column %q: %v", ErrConfiguration, s.indexCol, err))
			}
		}
		s.groups[i] = Group{Label: p.Key, Vertices: v}
	}
	s.log = o.Logger.With(zap.String("session", s.id))
	s.log.Debug("session created",
		zap.String("id_column", idCol),
		zap.String("group_column", groupCol),
		zap.Int("groups", len(s.groups)),
		zap.Int("entities", t.Height()),
	)

	return s, nil
}

// checkIDs rejects null and repeated identifiers.
func checkIDs(t *frame.Table, idCol string) error {
	groups, err := t.GroupBy(idCol)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.Key[0].IsNull() {
			return fmt.Errorf("%w in column %q (row %d)", ErrNullID, idCol, g.Rows[0])
		}
		if len(g.Rows) > 1 {
			return fmt.Errorf("%w: %s appears %d times in column %q", ErrDuplicateID, g.Key[0], len(g.Rows), idCol)
		}
	}
	return nil
}

func (s *Session) ready() bool { return s != nil && len(s.groups) >= 2 }

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// NumGroups returns the number of groups.
func (s *Session) NumGroups() int {
	if s == nil {
		return 0
	}
	return len(s.groups)
}

// Groups returns the ordered groups.
func (s *Session) Groups() []Group {
	if s == nil {
		return nil
	}
	return append([]Group(nil), s.groups...)
}

// IDColumn returns the identifier column name given to New.
func (s *Session) IDColumn() string {
	if s == nil {
		return ""
	}
	return s.idCol
}

// GroupColumn returns the group column name given to New.
func (s *Session) GroupColumn() string {
	if s == nil {
		return ""
	}
	return s.groupCol
}

// IndexColumn returns the internal row-index column name.
func (s *Session) IndexColumn() string {
	if s == nil {
		return ""
	}
	return s.indexCol
}

// WeightColumn returns the weight column of the last build.
func (s *Session) WeightColumn() string {
	if s == nil {
		return ""
	}
	return s.weightCol
}

// IDColumns returns the per-group identifier columns of hyperedge tables:
// "{id}_0" … "{id}_{k-1}".
func (s *Session) IDColumns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.groups))
	for i := range out {
		out[i] = s.idColumn(i)
	}
	return out
}

func (s *Session) idColumn(i int) string { return fmt.Sprintf("%s_%d", s.idCol, i) }

// Hyperedges returns the table produced by the last BuildHyperedges call,
// or nil.
func (s *Session) Hyperedges() *frame.Table {
	if s == nil {
		return nil
	}
	return s.hyperedges
}

// Warnings returns the advisory warnings issued so far.
func (s *Session) Warnings() []Warning {
	if s == nil {
		return nil
	}
	return append([]Warning(nil), s.warnings...)
}

func (s *Session) warn(op, text string, fields ...zap.Field) {
	s.warnings = append(s.warnings, Warning{Op: op, Text: text})
	s.log.Warn(op+": "+text, fields...)
}

// resolveExpr replaces an Invalid expression by literal 0, warning once
// per session.
func (s *Session) resolveExpr(op string, e expr.Expr) expr.Expr {
	if e.Valid() {
		return e
	}
	if !s.exprWarned {
		s.exprWarned = true
		s.warn(op, fmt.Sprintf("argument %s has unsupported type %T; using 0 instead", e, e.Raw()))
	}
	return expr.Lit(0)
}
