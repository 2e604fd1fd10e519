package planner

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/dshills/quantaopt/internal/config"
	"github.com/dshills/quantaopt/internal/errors"
	"github.com/dshills/quantaopt/internal/feature"
	"github.com/dshills/quantaopt/internal/log"
)

// Rule transforms a logical plan. Rules must be pure: the input plan is
// never modified, and applying a rule to equal plans yields equal plans.
type Rule interface {
	// Name identifies the rule in logs, metrics and configuration.
	Name() string
	// Apply returns the transformed plan, or the input itself when the rule
	// has nothing to do.
	Apply(plan LogicalPlan) (LogicalPlan, error)
}

type strategyKind int

const (
	strategyOnce strategyKind = iota
	strategyFixedPoint
)

// Strategy bounds how often a batch runs its rules.
type Strategy struct {
	kind          strategyKind
	MaxIterations int
}

// Once runs every rule of a batch exactly once.
func Once() Strategy {
	return Strategy{kind: strategyOnce, MaxIterations: 1}
}

// FixedPoint reruns the rules of a batch until the plan stops changing or
// maxIterations passes have run.
func FixedPoint(maxIterations int) Strategy {
	return Strategy{kind: strategyFixedPoint, MaxIterations: maxIterations}
}

// IsFixedPoint reports whether the batch is expected to converge.
func (s Strategy) IsFixedPoint() bool {
	return s.kind == strategyFixedPoint
}

func (s Strategy) String() string {
	if s.kind == strategyOnce {
		return "Once"
	}
	return fmt.Sprintf("FixedPoint(%d)", s.MaxIterations)
}

// Batch is an ordered list of rules run under one strategy.
type Batch struct {
	Name     string
	Strategy Strategy
	Rules    []Rule
}

// DefaultBatchName names the batch built by DefaultBatches.
const DefaultBatchName = "column-pruning"

// DefaultBatches returns the batches an optimizer runs when none are given.
func DefaultBatches() []Batch {
	return []Batch{{
		Name:     DefaultBatchName,
		Strategy: FixedPoint(100),
		Rules:    []Rule{&ColumnPruning{}, &RemoveNoopProject{}},
	}}
}

// ruleFlags maps built-in rules to the feature flags that toggle them.
var ruleFlags = map[string]feature.Flag{
	"ColumnPruning":     feature.ColumnPruning,
	"RemoveNoopProject": feature.RemoveNoopProject,
}

var builtinRules = map[string]func() Rule{
	"ColumnPruning":     func() Rule { return &ColumnPruning{} },
	"RemoveNoopProject": func() Rule { return &RemoveNoopProject{} },
}

// RuleByName returns a new instance of the named built-in rule.
func RuleByName(name string) (Rule, error) {
	newRule, ok := builtinRules[name]
	if !ok {
		return nil, errors.UnknownRuleError(name)
	}
	return newRule(), nil
}

// BatchesFromConfig builds batches from their configuration.
func BatchesFromConfig(cfg config.OptimizerConfig) ([]Batch, error) {
	batches := make([]Batch, 0, len(cfg.Batches))
	for _, bc := range cfg.Batches {
		var strategy Strategy
		switch bc.Strategy {
		case config.StrategyOnce:
			strategy = Once()
		case config.StrategyFixedPoint:
			if bc.MaxIterations < 1 {
				return nil, errors.InvalidStrategyError(bc.Strategy, bc.MaxIterations)
			}
			strategy = FixedPoint(bc.MaxIterations)
		default:
			return nil, errors.InvalidStrategyError(bc.Strategy, bc.MaxIterations)
		}

		rules := make([]Rule, 0, len(bc.Rules))
		for _, name := range bc.Rules {
			rule, err := RuleByName(name)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "batch %s", bc.Name)
			}
			rules = append(rules, rule)
		}
		batches = append(batches, Batch{Name: bc.Name, Strategy: strategy, Rules: rules})
	}
	return batches, nil
}

// Optimizer runs batches of rules over logical plans. It holds no state
// between calls and may be used by several goroutines at once.
type Optimizer struct {
	batches  []Batch
	logger   log.Logger
	metrics  *Metrics
	features *feature.Manager
	validate bool
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithBatches replaces the default batches.
func WithBatches(batches ...Batch) Option {
	return func(o *Optimizer) { o.batches = batches }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(o *Optimizer) { o.logger = logger }
}

// WithMetrics sets the metrics the optimizer reports to.
func WithMetrics(metrics *Metrics) Option {
	return func(o *Optimizer) { o.metrics = metrics }
}

// WithFeatures sets the feature flags consulted before running a rule.
func WithFeatures(features *feature.Manager) Option {
	return func(o *Optimizer) { o.features = features }
}

// WithValidation turns the checks run after every batch on or off.
func WithValidation(validate bool) Option {
	return func(o *Optimizer) { o.validate = validate }
}

// NewOptimizer creates an optimizer running the default batches.
func NewOptimizer(opts ...Option) *Optimizer {
	o := &Optimizer{
		batches:  DefaultBatches(),
		logger:   log.Default(),
		features: feature.Global(),
		validate: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics()
	}
	return o
}

// Metrics returns the metrics the optimizer reports to.
func (o *Optimizer) Metrics() *Metrics {
	return o.metrics
}

// Batches returns the configured batches.
func (o *Optimizer) Batches() []Batch {
	return o.batches
}

// Optimize runs every batch over plan, in order. The result produces the
// same attributes, in the same order, as plan.
func (o *Optimizer) Optimize(plan LogicalPlan) (LogicalPlan, error) {
	validate := o.validate && o.features.IsEnabled(feature.PlanValidation)
	if validate {
		if err := CheckResolved(plan); err != nil {
			return nil, err
		}
	}

	for _, batch := range o.batches {
		if batch.Strategy.MaxIterations < 1 {
			return nil, errors.InvalidStrategyError(batch.Strategy.String(), batch.Strategy.MaxIterations)
		}

		before := plan.Output()
		result, err := o.runBatch(batch, plan)
		if err != nil {
			return nil, err
		}

		if validate {
			if err := CheckResolved(result); err != nil {
				return nil, pkgerrors.Wrapf(err, "batch %s", batch.Name)
			}
			if !sameSchema(before, result.Output()) {
				return nil, errors.SchemaChangedError(batch.Name, attributeList(before), attributeList(result.Output()))
			}
		}
		plan = result
	}
	return plan, nil
}

func (o *Optimizer) runBatch(batch Batch, plan LogicalPlan) (LogicalPlan, error) {
	prevFingerprint := Fingerprint(plan)
	seenPlans := map[uint64]struct{}{FingerprintHash(plan): {}}

	iteration := 0
	converged, cycled := false, false
	for iteration < batch.Strategy.MaxIterations {
		iteration++

		for _, rule := range batch.Rules {
			if !o.ruleEnabled(rule) {
				continue
			}
			newPlan, err := rule.Apply(plan)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "batch %s: rule %s", batch.Name, rule.Name())
			}

			effective := newPlan != plan && !Equal(newPlan, plan)
			o.metrics.observeRule(rule.Name(), effective)
			if effective {
				if o.logger.Enabled(log.LevelDebug) {
					o.logger.Debug("optimizer rule applied",
						"batch", batch.Name,
						"rule", rule.Name(),
						"iteration", iteration,
						"plan", Explain(newPlan))
				}
				plan = newPlan
			}
		}

		currentFingerprint := Fingerprint(plan)
		if currentFingerprint == prevFingerprint {
			converged = true
			break
		}
		prevFingerprint = currentFingerprint

		// A plan seen before means the rules are cycling between trees.
		hash := FingerprintHash(plan)
		if _, seen := seenPlans[hash]; seen {
			o.logger.Warn("optimizer batch is cycling",
				"batch", batch.Name,
				"iteration", iteration)
			o.metrics.nonconvergedTotal.WithLabelValues(batch.Name).Inc()
			cycled = true
			break
		}
		seenPlans[hash] = struct{}{}
	}

	o.metrics.batchIterations.WithLabelValues(batch.Name).Observe(float64(iteration))

	if batch.Strategy.IsFixedPoint() && !converged && !cycled {
		o.logger.Warn("optimizer batch reached max iterations without converging",
			"batch", batch.Name,
			"max_iterations", batch.Strategy.MaxIterations)
		o.metrics.nonconvergedTotal.WithLabelValues(batch.Name).Inc()
	}

	o.logger.Debug("optimizer batch finished",
		"batch", batch.Name,
		"strategy", batch.Strategy.String(),
		"iterations", iteration,
		"converged", converged)
	return plan, nil
}

func (o *Optimizer) ruleEnabled(rule Rule) bool {
	flag, ok := ruleFlags[rule.Name()]
	if !ok {
		return true
	}
	return o.features.IsEnabled(flag)
}
