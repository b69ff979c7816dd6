package quantify

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/agenthands/causet/internal/core/model"
)

// GraphView is the read-only slice of the causal graph a quantification
// run consumes. Implementations must be immutable for the lifetime of
// the run; the orchestrator hands out snapshots for this reason.
type GraphView interface {
	HasNode(id string) bool
	Predecessors(target string) []string
	LinksBetween(parent, child string) []*model.Link
	GetLink(id string) (*model.Link, error)
}

// Method selects how a parent's parallel links are reduced into one
// conditional-probability vector.
type Method int

const (
	// Arithmetic reduces links by a weighted elementwise sum.
	Arithmetic Method = iota
	// Geometric reduces links by a weighted elementwise product.
	Geometric
)

func (m Method) String() string {
	switch m {
	case Arithmetic:
		return "arithmetic"
	case Geometric:
		return "geometric"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod maps a CLI/API string onto a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "arithmetic":
		return Arithmetic, nil
	case "geometric":
		return Geometric, nil
	default:
		return 0, fmt.Errorf("unknown aggregation method %q (want arithmetic or geometric)", s)
	}
}

// Config carries the sampling parameters for one quantification run.
// The zero value is usable: fields are defaulted in New.
type Config struct {
	// SampleSize is the Monte-Carlo vector length shared by every
	// estimate in the run.
	SampleSize int
	// Confidence is the two-sided confidence level NORMAL estimates
	// interpret their (a, b) interval at.
	Confidence float64
	// Seed seeds the run's random source. Equal seeds with equal
	// inputs give numerically identical CPTs.
	Seed uint64
	// MaxParents caps k before the 2^k subset enumeration starts.
	MaxParents int
	// SubstituteZeroWeights turns a zero normalization denominator
	// into a zero weight instead of a DegenerateWeightError.
	SubstituteZeroWeights bool
	// Workers bounds the goroutines combining subsets. 0 or 1 keeps
	// the run single-threaded.
	Workers int
}

const defaultMaxParents = 20

func (c Config) withDefaults() Config {
	if c.SampleSize == 0 {
		c.SampleSize = model.DefaultSampleSize
	}
	if c.Confidence == 0 {
		c.Confidence = model.DefaultConfidence
	}
	if c.MaxParents == 0 {
		c.MaxParents = defaultMaxParents
	}
	return c
}

// Entry is one CPT row: the summarized probability that the target is
// active given exactly the factors in Members are active.
type Entry struct {
	Members []string `json:"members" yaml:"members"`
	Mean    float64  `json:"mean" yaml:"mean"`
	StdDev  float64  `json:"std_dev" yaml:"std_dev"`
}

// CPT maps the canonical subset key (sorted factor ids joined by
// commas) onto the subset's summarized entry.
type CPT map[string]Entry

// SubsetKey returns the canonical, order-independent key for a parent
// subset.
func SubsetKey(members []string) string {
	sorted := make([]string, len(members))
	copy(sorted, members)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// Quantifier builds the conditional-probability table for one target
// factor. It owns all intermediate sample arrays, so concurrent runs
// against the same graph snapshot need one Quantifier each.
type Quantifier struct {
	view   GraphView
	target string
	cfg    Config

	parents    []string             // sorted arena; subset masks index into it
	weights    map[string][]float64 // link id -> normalized weight vector
	cp         map[string][]float64 // parent id -> aggregated conditional probability
	cpt        CPT
	calculated bool
}

// New returns a Quantifier for target over view. The target must exist
// in the graph; predecessors are resolved at Calculate time.
func New(view GraphView, target string, cfg Config) (*Quantifier, error) {
	if !view.HasNode(target) {
		return nil, fmt.Errorf("target factor [%s] does not exist in the model", target)
	}
	return &Quantifier{
		view:   view,
		target: target,
		cfg:    cfg.withDefaults(),
	}, nil
}

// Target returns the target factor id the Quantifier was built for.
func (q *Quantifier) Target() string { return q.target }

// Calculate runs the full quantification pipeline: draw samples,
// normalize per-link weights, aggregate per parent, combine every
// non-empty parent subset with noisy-OR, and summarize each subset's
// sample vector as (mean, std dev).
//
// Any error aborts the run entirely; a partial CPT is never kept.
// Re-invoking Calculate overwrites prior results.
func (q *Quantifier) Calculate(method Method) error {
	q.calculated = false
	q.cpt = nil

	parents := append([]string(nil), q.view.Predecessors(q.target)...)
	sort.Strings(parents)
	if len(parents) == 0 {
		return &NoPredecessorsError{Target: q.target}
	}
	if len(parents) > q.cfg.MaxParents {
		return &ParentLimitError{Target: q.target, Count: len(parents), Limit: q.cfg.MaxParents}
	}
	q.parents = parents

	// One seeded source for the whole run. Draw order is fixed
	// (parents sorted, links sorted by edge key, m1 then m2 then m3)
	// so equal seeds reproduce equal CPTs.
	rng := rand.New(rand.NewSource(q.cfg.Seed))

	draws, err := q.drawSamples(rng)
	if err != nil {
		return err
	}

	weights, err := normalizeWeights(q.parents, draws, q.cfg.SampleSize, q.cfg.SubstituteZeroWeights)
	if err != nil {
		return err
	}
	q.weights = weights

	cp, err := aggregate(method, q.parents, draws, weights, q.cfg.SampleSize)
	if err != nil {
		return err
	}
	q.cp = cp

	q.cpt = q.combineSubsets(cp)
	q.calculated = true
	return nil
}

// Results returns a copy of the calculated CPT, or ErrNotReady if
// Calculate has not completed since the Quantifier was created.
// Callers own the copy; mutating it does not affect the Quantifier.
func (q *Quantifier) Results() (CPT, error) {
	if !q.calculated {
		return nil, ErrNotReady
	}
	out := make(CPT, len(q.cpt))
	for k, e := range q.cpt {
		e.Members = append([]string(nil), e.Members...)
		out[k] = e
	}
	return out, nil
}

// Parents returns the sorted parent arena of the last Calculate call.
func (q *Quantifier) Parents() []string {
	return append([]string(nil), q.parents...)
}

// ConditionalProbability returns the mean of one parent's aggregated
// conditional-probability vector, for diagnostics and tests.
func (q *Quantifier) ConditionalProbability(parent string) (float64, error) {
	if !q.calculated {
		return 0, ErrNotReady
	}
	v, ok := q.cp[parent]
	if !ok {
		return 0, fmt.Errorf("factor [%s] is not a parent of [%s]", parent, q.target)
	}
	return stat.Mean(v, nil), nil
}

// drawSamples draws the three estimate vectors for every link into the
// target, grouped per parent with links ordered by edge key.
func (q *Quantifier) drawSamples(rng *rand.Rand) (map[string][]*linkDraw, error) {
	draws := make(map[string][]*linkDraw, len(q.parents))
	for _, p := range q.parents {
		links := append([]*model.Link(nil), q.view.LinksBetween(p, q.target)...)
		sort.Slice(links, func(i, j int) bool { return links[i].EdgeKey < links[j].EdgeKey })

		for _, link := range links {
			d := &linkDraw{link: link}
			var err error
			if d.credibility, err = link.Credibility.Sample(q.cfg.SampleSize, q.cfg.Confidence, rng); err != nil {
				return nil, fmt.Errorf("link [%s] credibility: %w", link.ID, err)
			}
			if d.strength, err = link.EvidenceStrength.Sample(q.cfg.SampleSize, q.cfg.Confidence, rng); err != nil {
				return nil, fmt.Errorf("link [%s] evidence strength: %w", link.ID, err)
			}
			if d.confidence, err = link.Confidence.Sample(q.cfg.SampleSize, q.cfg.Confidence, rng); err != nil {
				return nil, fmt.Errorf("link [%s] confidence: %w", link.ID, err)
			}
			draws[p] = append(draws[p], d)
		}
	}
	return draws, nil
}

func summarize(members []string, sample []float64) Entry {
	return Entry{
		Members: members,
		Mean:    stat.Mean(sample, nil),
		StdDev:  stat.PopStdDev(sample, nil),
	}
}
