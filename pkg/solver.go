package logicdb

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vilterp/logicdb/pkg/lang"
	clog "github.com/vilterp/logicdb/pkg/log"
	"github.com/vilterp/logicdb/pkg/parse"
	"github.com/vilterp/logicdb/pkg/relation"
	"golang.org/x/sync/errgroup"
)

const DefaultMaxDepth = 256

type Options struct {
	// MaxDepth bounds the number of nested rule expansions. Zero means
	// DefaultMaxDepth.
	MaxDepth int
	// Parallel resolves the body predicates of each rule concurrently.
	// Bodies are still joined in source order.
	Parallel bool
}

// Solver answers questions against one knowledge base. It holds no
// per-question state, so Ask may be called from many goroutines at once.
type Solver struct {
	kb      *lang.KnowledgeBase
	opts    Options
	metrics *metrics
}

func NewSolver(kb *lang.KnowledgeBase, opts Options) *Solver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	solver := &Solver{
		kb:   kb,
		opts: opts,
	}
	solver.metrics = newMetrics(solver)
	return solver
}

func (s *Solver) KnowledgeBase() *lang.KnowledgeBase {
	return s.kb
}

func (s *Solver) Registry() *prometheus.Registry {
	return s.metrics.registry
}

// AskString parses question and answers it. A question that doesn't parse
// is a *MalformedQuestionError.
func (s *Solver) AskString(ctx context.Context, question string) ([]lang.Predicate, error) {
	pred, err := parse.ParseQuestion(question)
	if err != nil {
		err = &MalformedQuestionError{Question: question, Err: err}
		s.metrics.asks.Inc()
		s.metrics.askErrors.WithLabelValues(KindMalformedQuestion).Inc()
		return nil, err
	}
	return s.Ask(ctx, pred)
}

// Ask returns every stored or derivable fact with the question's name that
// agrees with the question's constant terms. An empty answer is not an
// error.
func (s *Solver) Ask(ctx context.Context, question lang.Predicate) ([]lang.Predicate, error) {
	if ctx.Value(clog.QueryIDKey) == nil {
		ctx = context.WithValue(ctx, clog.QueryIDKey, uuid.New().String())
	}
	startTime := time.Now()
	d := newDerivation(s.kb, s.opts)
	answer, err := d.answer(ctx, question)
	duration := time.Since(startTime)

	s.metrics.asks.Inc()
	s.metrics.askLatency.Observe(float64(duration.Nanoseconds()))
	s.metrics.rulesFired.Add(float64(d.rulesFired))
	s.metrics.factsDerived.Add(float64(len(d.derived)))
	if err != nil {
		s.metrics.askErrors.WithLabelValues(ErrorKind(err)).Inc()
		clog.Errorf(d.loggable(ctx), "%s failed after %s: %v", question, duration, err)
		return nil, err
	}
	s.metrics.answerSize.Observe(float64(len(answer)))
	clog.Debugf(
		d.loggable(ctx), "%s: %d answers, %d rules fired, %d facts derived, in %s",
		question, len(answer), d.rulesFired, len(d.derived), duration,
	)
	return answer, nil
}

// derivation is the state of a single Ask: completed results per predicate
// name and the facts derived so far. It is never shared between questions.
type derivation struct {
	kb   *lang.KnowledgeBase
	opts Options

	mu         sync.Mutex
	memo       map[string][]lang.Predicate
	derived    []lang.Predicate
	rulesFired int
}

func newDerivation(kb *lang.KnowledgeBase, opts Options) *derivation {
	return &derivation{
		kb:   kb,
		opts: opts,
		memo: map[string][]lang.Predicate{},
	}
}

func (d *derivation) loggable(ctx context.Context) clog.Loggable {
	return clog.Tagged{Context: ctx}
}

func (d *derivation) answer(ctx context.Context, question lang.Predicate) ([]lang.Predicate, error) {
	if arity, ok := d.kb.Arity(question.Name()); ok && arity != question.Arity() {
		return nil, &lang.ArityMismatchError{
			Name:   question.Name(),
			Wanted: arity,
			Got:    question.Arity(),
			In:     "question " + question.String(),
		}
	}
	candidates, err := d.resolve(ctx, question.Name(), nil)
	if err != nil {
		return nil, err
	}
	return filterByFixedArguments(candidates, question), nil
}

// resolutionPath is the chain of predicate names being expanded, innermost
// first. Each goroutine extends its own chain.
type resolutionPath struct {
	name   string
	parent *resolutionPath
	depth  int
}

func (p *resolutionPath) contains(name string) bool {
	for cur := p; cur != nil; cur = cur.parent {
		if cur.name == name {
			return true
		}
	}
	return false
}

func (p *resolutionPath) getDepth() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// names returns the path outermost first.
func (p *resolutionPath) names() []string {
	var out []string
	for cur := p; cur != nil; cur = cur.parent {
		out = append([]string{cur.name}, out...)
	}
	return out
}

// resolve returns the stored facts named name followed by the facts derived
// from each rule with that head, in rule order.
func (d *derivation) resolve(ctx context.Context, name string, path *resolutionPath) ([]lang.Predicate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path.contains(name) {
		return nil, &CycleError{Path: append(path.names(), name)}
	}
	if cached, ok := d.lookup(name); ok {
		return cached, nil
	}
	depth := path.getDepth() + 1
	if depth > d.opts.MaxDepth {
		return nil, &DepthExceededError{
			MaxDepth: d.opts.MaxDepth,
			Path:     append(path.names(), name),
		}
	}
	here := &resolutionPath{
		name:   name,
		parent: path,
		depth:  depth,
	}

	stored := d.kb.FactsNamed(name)
	result := make([]lang.Predicate, len(stored), len(stored)+8)
	copy(result, stored)
	for _, rule := range d.kb.RulesFor(name) {
		facts, err := d.applyRule(ctx, rule, here)
		if err != nil {
			return nil, err
		}
		result = append(result, facts...)
	}
	return d.store(name, result), nil
}

func (d *derivation) lookup(name string) ([]lang.Predicate, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result, ok := d.memo[name]
	return result, ok
}

// store memoizes result unless a concurrent branch got there first, and
// returns whichever result is kept. Both are equal in content.
func (d *derivation) store(name string, result []lang.Predicate) []lang.Predicate {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.memo[name]; ok {
		return existing
	}
	d.memo[name] = result
	return result
}

func (d *derivation) record(facts []lang.Predicate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rulesFired++
	d.derived = append(d.derived, facts...)
}

// applyRule joins one table per body predicate, left to right, and projects
// the result onto the head's variables.
func (d *derivation) applyRule(ctx context.Context, rule lang.Rule, path *resolutionPath) ([]lang.Predicate, error) {
	body := rule.Body()
	tables, err := d.bodyTables(ctx, body, path)
	if err != nil {
		return nil, err
	}

	joined := tables[0].Restrict()
	for _, table := range tables[1:] {
		joined = joined.Join(table)
	}

	head := rule.Head()
	projected, err := joined.Project(head.Params())
	if err != nil {
		return nil, errors.Wrapf(err, "applying rule %s", rule)
	}
	facts := projected.ToPredicates(head.Name())
	d.record(facts)

	clog.Debugf(
		d.loggable(ctx), "rule %s: joined %d rows, derived %d facts", rule, joined.Len(), len(facts),
	)
	return facts, nil
}

func (d *derivation) bodyTables(
	ctx context.Context, body []lang.Predicate, path *resolutionPath,
) ([]*relation.Table, error) {
	tables := make([]*relation.Table, len(body))
	tableFor := func(ctx context.Context, idx int) error {
		pred := body[idx]
		facts, err := d.resolve(ctx, pred.Name(), path)
		if err != nil {
			return err
		}
		table, err := relation.FromPredicates(facts, pred.Params())
		if err != nil {
			return errors.Wrapf(err, "loading %s", pred)
		}
		tables[idx] = table
		return nil
	}

	if !d.opts.Parallel || len(body) == 1 {
		for idx := range body {
			if err := tableFor(ctx, idx); err != nil {
				return nil, err
			}
		}
		return tables, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for idx := range body {
		idx := idx
		group.Go(func() error {
			return tableFor(groupCtx, idx)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// filterByFixedArguments keeps the candidates that agree with the question
// at every position where the question has a constant.
func filterByFixedArguments(candidates []lang.Predicate, question lang.Predicate) []lang.Predicate {
	kept := make([]lang.Predicate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Matches(question) {
			kept = append(kept, candidate)
		}
	}
	return kept
}
