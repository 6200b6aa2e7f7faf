// Package topology computes the topological class score for a drug
// pair relative to a disease module: whether the two drugs cover
// complementary or redundant regions of the disease neighborhood.
package topology

import (
	"context"
	"log/slog"

	"github.com/adalundhe/synet/core/distance"
	"github.com/adalundhe/synet/core/graph"
)

// Class is the topological class of a drug pair.
type Class int

const (
	// Complementary: the drug modules are separated (s_AB > 0) and
	// both are proximal to the disease module.
	Complementary Class = iota

	// Intermediate: separated, but at least one drug is distal.
	Intermediate

	// Redundant: the drug modules overlap (s_AB <= 0).
	Redundant
)

var classNames = map[Class]string{
	Complementary: "complementary",
	Intermediate:  "intermediate",
	Redundant:     "redundant",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// Default score shape. The closeness threshold and scales have no
// published values; these are the working defaults and every one is
// overridable.
const (
	DefaultClosenessThreshold = 3.0
	DefaultProximityScale     = 10.0
	DefaultSeparationScale    = 5.0
)

// Classifier computes TQAB scores over one distance engine.
type Classifier struct {
	engine          *distance.Engine
	closeness       float64
	proximityScale  float64
	separationScale float64
	logger          *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCloseness sets the disease-proximity threshold below which a
// drug counts as proximal.
func WithCloseness(t float64) Option {
	return func(c *Classifier) {
		if t > 0 {
			c.closeness = t
		}
	}
}

// WithScales sets the proximity and separation normalization scales of
// the score formula.
func WithScales(proximity, separation float64) Option {
	return func(c *Classifier) {
		if proximity > 0 {
			c.proximityScale = proximity
		}
		if separation > 0 {
			c.separationScale = separation
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a classifier on top of a distance engine.
func New(engine *distance.Engine, opts ...Option) *Classifier {
	c := &Classifier{
		engine:          engine,
		closeness:       DefaultClosenessThreshold,
		proximityScale:  DefaultProximityScale,
		separationScale: DefaultSeparationScale,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result carries the TQAB score with its classification inputs.
type Result struct {
	Score float64
	Class Class

	// SAB is the drug-drug separation d_AB - (d_AA + d_BB)/2.
	SAB float64

	// DAQ and DBQ are the drug-to-disease module distances.
	DAQ float64
	DBQ float64
}

// Classify computes the topological class and score of drug pair (A,B)
// against disease module Q.
//
// The numeric score preserves the required ordering: a complementary
// pair (d mean below the closeness threshold, threshold < proximity
// scale) always scores above any redundant pair, whose score is never
// positive. Within the complementary band, closer disease proximity
// scores higher.
func (c *Classifier) Classify(ctx context.Context, disease, drugA, drugB *graph.Module) (Result, error) {
	dAB, err := c.engine.ModuleDistance(ctx, drugA, drugB)
	if err != nil {
		return Result{}, err
	}
	// Self-separations are 0 for any module fully resident in the
	// graph; members missing from the graph surface as sentinel
	// contributions, which is the wanted penalty.
	dAA, err := c.engine.SelfDistance(ctx, drugA)
	if err != nil {
		return Result{}, err
	}
	dBB, err := c.engine.SelfDistance(ctx, drugB)
	if err != nil {
		return Result{}, err
	}
	sAB := dAB - (dAA+dBB)/2

	dAQ, err := c.engine.ModuleDistance(ctx, drugA, disease)
	if err != nil {
		return Result{}, err
	}
	dBQ, err := c.engine.ModuleDistance(ctx, drugB, disease)
	if err != nil {
		return Result{}, err
	}
	dMean := (dAQ + dBQ) / 2

	result := Result{SAB: sAB, DAQ: dAQ, DBQ: dBQ}
	switch {
	case sAB > 0 && dAQ < c.closeness && dBQ < c.closeness:
		result.Class = Complementary
		result.Score = 1.0 - dMean/c.proximityScale
	case sAB > 0:
		result.Class = Intermediate
		result.Score = 0.5 - dMean/c.proximityScale
	default:
		result.Class = Redundant
		result.Score = -abs(sAB) / c.separationScale
	}

	c.logger.Debug("topological classification",
		"disease", disease.Name(), "drug_a", drugA.Name(), "drug_b", drugB.Name(),
		"s_ab", sAB, "d_aq", dAQ, "d_bq", dBQ,
		"class", result.Class.String(), "score", result.Score)
	return result, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
