package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/chg/internal/graph"
)

// ErrNonFinite is wrapped by a ComputationError when a relation returns
// NaN or an infinity without reporting an error itself.
var ErrNonFinite = errors.New("relation produced a non-finite value")

// Resolver searches a registry for the history of a target node.
//
// A Resolver holds no per-solve state and is safe for concurrent use; each
// Solve call works on its own memo, budget and clock.
type Resolver struct {
	logger       *slog.Logger
	defaultDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger attempts and outcomes are written to.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithDefaultSearchDepth sets the attempt budget used when a request does
// not carry one.
func WithDefaultSearchDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.defaultDepth = n
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{defaultDepth: DefaultSearchDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Solve extends the target's history index by index until the request's
// termination condition holds at an index of at least MinIndex.
//
// Returns the trace on success. A search that ends without one returns a
// *NoSolutionError (errors.Is(err, ErrNoSolution)). A malformed request
// returns a *RequestError, a conflicting write a *graph.Error, and a
// cancelled ctx its error.
func (r *Resolver) Solve(ctx context.Context, reg *graph.Registry, req Request) (*Trace, error) {
	if reg == nil {
		return nil, &RequestError{Field: "registry", Message: "registry is required"}
	}
	if err := req.Validate(reg); err != nil {
		return nil, err
	}

	depth := req.SearchDepth
	if depth == 0 {
		depth = r.defaultDepth
	}

	s := &solve{
		ctx:      ctx,
		log:      r.log(),
		reg:      reg,
		req:      req,
		memo:     newMemo(),
		budget:   NewBudget(depth),
		inflight: newInflight(),
		clock:    NewClock(),
		watch:    newWatchSet(req.DebugNodes, req.DebugEdges),
	}
	s.watch.warnUnknown(ctx, s.log, reg)
	s.seed()

	s.log.DebugContext(ctx, "solve started",
		"target", req.Target,
		"min_index", req.MinIndex,
		"max_index", req.MaxIndex,
		"search_depth", depth,
		"termination", req.termination().String(),
	)
	return s.run()
}

// solve is the state of one Solve call.
type solve struct {
	ctx      context.Context
	log      *slog.Logger
	reg      *graph.Registry
	req      Request
	memo     *memo
	budget   *Budget
	inflight *inflight
	clock    *Clock
	watch    watchSet

	stats    Stats
	failures []*ComputationError
}

// seed loads declared constants and request seeds into the memo.
func (s *solve) seed() {
	for _, name := range sortedSeedNames(s.req.Seeds) {
		v := s.req.Seeds[name]
		node, _ := s.reg.Node(name)
		_, declared := node.Constant()
		if declared || !s.reg.HasEdges(name) {
			s.memo.SetConstant(name, v, origin{seq: s.clock.Next()})
			continue
		}
		// A seeded produced node starts its history; the write cannot
		// conflict on an empty memo.
		_ = s.memo.Set(name, 0, v, origin{seq: s.clock.Next()})
	}
	for _, n := range s.reg.Nodes() {
		if s.memo.IsConstant(n.Name) {
			continue
		}
		if v, ok := n.Constant(); ok {
			s.memo.SetConstant(n.Name, v, origin{seq: s.clock.Next()})
		}
	}
}

// run drives the target index by index.
func (s *solve) run() (*Trace, error) {
	target := s.req.Target
	term := s.req.termination()

	for index := 0; ; index++ {
		if s.req.MaxIndex > 0 && index > s.req.MaxIndex {
			return nil, s.noSolution(ReasonIndexBound, s.req.MaxIndex)
		}

		v, ok, err := s.resolve(target, index)
		if err != nil {
			return nil, s.abort(err, index)
		}
		if !ok {
			return nil, s.noSolution(ReasonUnresolvable, index)
		}
		s.log.DebugContext(s.ctx, "target extended", "node", target, "index", index, "value", v)

		if s.memo.IsConstant(target) {
			// A constant target never changes; only the index can still
			// satisfy the condition.
			at := max(index, s.req.MinIndex)
			if term.Done(v, at) {
				return s.success(term, at, v), nil
			}
			return nil, s.noSolution(ReasonUnresolvable, at)
		}
		if index >= s.req.MinIndex && term.Done(v, index) {
			return s.success(term, index, v), nil
		}
	}
}

func (s *solve) success(term Termination, index int, value float64) *Trace {
	stats := s.finalStats()
	s.log.InfoContext(s.ctx, "solve complete",
		"target", s.req.Target,
		"index", index,
		"value", value,
		"attempts", stats.Attempts,
		"limit", stats.Limit,
	)
	return buildTrace(s.reg, s.memo, s.req.Target, index, value, term, stats, s.failures)
}

func (s *solve) finalStats() Stats {
	stats := s.stats
	stats.Attempts = s.budget.Used()
	stats.Limit = s.budget.Limit()
	return stats
}

func (s *solve) noSolution(reason Reason, index int) error {
	stats := s.finalStats()
	err := &NoSolutionError{
		Reason:   reason,
		Target:   s.req.Target,
		Index:    index,
		Attempts: stats.Attempts,
		Limit:    stats.Limit,
		Failures: s.failures,
	}
	level := slog.LevelWarn
	if reason == ReasonBudgetExhausted {
		level = slog.LevelError
	}
	s.log.Log(s.ctx, level, "no solution",
		"target", s.req.Target,
		"index", index,
		"reason", string(reason),
		"attempts", stats.Attempts,
		"limit", stats.Limit,
		"computation_errors", len(s.failures),
	)
	return err
}

// abort turns an error that stopped the search into the Solve result.
func (s *solve) abort(err error, index int) error {
	if IsBudgetExhausted(err) {
		return s.noSolution(ReasonBudgetExhausted, index)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("solve %s at index %d: %w", s.req.Target, index, err)
	}
	return err
}

// resolve produces node at index, searching with an explicit frame stack
// so deep histories do not grow the goroutine stack.
//
// Returns ok=false when every alternative failed. A non-nil error aborts
// the whole solve.
func (s *solve) resolve(node string, index int) (float64, bool, error) {
	if v, ok := s.memo.Lookup(node, index); ok {
		return v, true, nil
	}

	stack := []*frame{s.open(node, index)}
	var last result
	pending := false

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if pending {
			s.accept(f, last)
			pending = false
		}

		child, err := s.advance(f)
		if err != nil {
			for _, fr := range stack {
				s.inflight.Leave(fr.node, fr.index)
			}
			return 0, false, err
		}
		if child != nil {
			stack = append(stack, child)
			if len(stack) > s.stats.MaxStack {
				s.stats.MaxStack = len(stack)
			}
			continue
		}

		stack = stack[:len(stack)-1]
		s.inflight.Leave(f.node, f.index)
		last = f.result
		pending = true
	}
	return last.value, last.ok, nil
}

func (s *solve) open(node string, index int) *frame {
	s.inflight.Enter(node, index)
	if s.stats.MaxStack == 0 {
		s.stats.MaxStack = 1
	}
	return &frame{
		node:  node,
		index: index,
		edges: s.reg.EdgesFor(node),
	}
}

// accept hands a finished child's result to its parent frame.
func (s *solve) accept(f *frame, r result) {
	if f.cur == nil {
		return
	}
	p := f.cur.picks[f.next]
	if r.ok {
		f.args[p.input.Name] = r.value
		f.next++
		return
	}
	s.stats.Unresolved++
	s.logAttempt(f, f.edge(), f.cur, InputsUnresolved, "input", p.ref().String())
	f.abandon()
}

// advance works on f until it needs a child frame or finishes.
//
// Returns the child to push, or nil once f.result is final.
func (s *solve) advance(f *frame) (*frame, error) {
attempts:
	for {
		if f.cur == nil {
			c, ok := f.nextCombo(s.combinations)
			if !ok {
				f.result = result{}
				s.log.Log(s.ctx, s.watch.level(f.node, nil), "node unresolvable",
					"node", f.node, "index", f.index, "edges", len(f.edges))
				return nil, nil
			}
			if err := s.ctx.Err(); err != nil {
				return nil, err
			}
			e := f.edge()
			if err := s.budget.Check(f.node, f.index); err != nil {
				s.log.ErrorContext(s.ctx, "search depth exhausted",
					"node", f.node, "index", f.index, "edge", e.Label, "limit", s.budget.Limit())
				return nil, err
			}
			if !e.Validity.Valid(c.indices) {
				s.stats.Invalid++
				s.logAttempt(f, e, c, Invalid, "validity", e.Validity.String())
				continue
			}
			f.begin(c)
		}

		e := f.edge()
		for f.next < len(f.cur.picks) {
			p := f.cur.picks[f.next]
			if v, ok := s.memo.Lookup(p.input.Node, p.index); ok {
				f.args[p.input.Name] = v
				f.next++
				if !p.constant {
					s.stats.MemoHits++
				}
				continue
			}
			if s.inflight.WouldCycle(p.input.Node, p.index) {
				s.stats.Cycles++
				s.stats.Unresolved++
				s.logAttempt(f, e, f.cur, InputsUnresolved, "cycle", p.ref().String())
				f.abandon()
				continue attempts
			}
			return s.open(p.input.Node, p.index), nil
		}

		done, err := s.fire(f, e)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, nil
		}
	}
}

// fire evaluates the relation of e on the resolved inputs of f.cur. It
// reports whether f now holds a value; a failed relation only drops the
// combination, a conflicting write is returned.
func (s *solve) fire(f *frame, e *graph.Edge) (bool, error) {
	c := f.cur
	for _, in := range e.Inputs {
		if in.Rule.Kind != graph.RuleIndexOf {
			continue
		}
		idx, ok := c.indices[in.Rule.Of]
		if !ok {
			// The referenced input is constant; its index is the firing base.
			idx = f.index - e.Offset
		}
		f.args[in.Name] = float64(idx)
	}

	v, err := e.Relation.Evaluate(f.args)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = ErrNonFinite
	}
	if err != nil {
		ce := &ComputationError{
			Edge:   e.Label,
			Node:   f.node,
			Index:  f.index,
			Inputs: copyArgs(f.args),
			Err:    err,
		}
		s.failures = append(s.failures, ce)
		s.stats.ComputationErrors++
		s.log.WarnContext(s.ctx, "relation failed",
			"edge", e.Label,
			"node", f.node,
			"index", f.index,
			"inputs", formatArgs(ce.Inputs),
			"indices", graph.FormatIndices(c.indices),
			"outcome", ComputationFailed.String(),
			"error", err,
		)
		f.abandon()
		return false, nil
	}

	o := origin{seq: s.clock.Next(), edge: e.Label, inputs: s.refs(c)}
	// A node with a history stays dynamic even when fed by constants only.
	if c.constant && s.memo.Series(f.node) == nil {
		s.memo.SetConstant(f.node, v, o)
	} else if err := s.memo.Set(f.node, f.index, v, o); err != nil {
		return false, err
	}

	s.stats.Produced++
	s.logAttempt(f, e, c, Produced, "value", v)
	f.result = result{value: v, ok: true}
	f.abandon()
	return true, nil
}

// combinations enumerates the candidate index combinations of e producing
// index: the cartesian product of every node input's candidates in
// declaration order (last input varying fastest), keeping those whose
// latest dynamic input plus the offset lands exactly on index.
func (s *solve) combinations(e *graph.Edge, index int) []combo {
	base := index - e.Offset
	if base < 0 {
		return nil
	}

	var lists [][]pick
	for _, in := range e.Inputs {
		if in.Rule.Kind == graph.RuleIndexOf {
			continue
		}
		if s.memo.IsConstant(in.Node) {
			lists = append(lists, []pick{{input: in, constant: true}})
			continue
		}
		cands := in.Rule.Candidates(base)
		if len(cands) == 0 {
			return nil
		}
		ps := make([]pick, len(cands))
		for i, idx := range cands {
			ps[i] = pick{input: in, index: idx}
		}
		lists = append(lists, ps)
	}

	var out []combo
	cur := make([]pick, len(lists))
	var walk func(k int)
	walk = func(k int) {
		if k == len(lists) {
			ix := make(graph.Indices, len(cur))
			for _, p := range cur {
				if !p.constant {
					ix[p.input.Name] = p.index
				}
			}
			latest, dynamic := ix.Max()
			if dynamic && latest+e.Offset != index {
				return
			}
			out = append(out, combo{
				picks:    append([]pick(nil), cur...),
				indices:  ix,
				constant: !dynamic && e.Offset == 0,
			})
			return
		}
		for _, p := range lists[k] {
			cur[k] = p
			walk(k + 1)
		}
	}
	walk(0)
	return out
}

func (s *solve) logAttempt(f *frame, e *graph.Edge, c *combo, o Outcome, attrs ...any) {
	level := s.watch.level(f.node, e)
	if !s.log.Enabled(s.ctx, level) {
		return
	}
	base := []any{
		"edge", e.Label,
		"node", f.node,
		"index", f.index,
		"outcome", o.String(),
		"indices", graph.FormatIndices(c.indices),
	}
	s.log.Log(s.ctx, level, "edge attempt", append(base, attrs...)...)
}

// refs returns the provenance of c's inputs. An input picked at an index
// may have resolved to a derived constant since c was enumerated.
func (s *solve) refs(c *combo) []Ref {
	refs := c.refs()
	for i := range refs {
		if !refs[i].Constant && s.memo.IsConstant(refs[i].Node) {
			refs[i] = Ref{Node: refs[i].Node, Constant: true}
		}
	}
	return refs
}

func copyArgs(a graph.Args) graph.Args {
	out := make(graph.Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
