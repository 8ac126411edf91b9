package evaluator

import (
	"github.com/YuminosukeSato/synthcheck/association"
	"github.com/YuminosukeSato/synthcheck/config"
	"github.com/YuminosukeSato/synthcheck/efficacy"
	"github.com/YuminosukeSato/synthcheck/pkg/telemetry"
)

// settings は New に渡されたオプションの集約
type settings struct {
	categorical      []string
	uniqueThreshold  int
	nSamples         int
	seed             uint64
	metric           string
	nSamplesDistance int
	estimatorSeed    int64
	kfold            bool
	workers          int
	logLevel         string
	mixed            association.MixedMeasure
	renderer         Renderer
	telemetry        *telemetry.Metrics
}

func defaultSettings() settings {
	d := config.Default()
	return settings{
		metric:           d.Metric,
		nSamplesDistance: d.NSamplesDistance,
		estimatorSeed:    d.EstimatorSeed,
		mixed:            association.MixedTheilsU,
	}
}

// Option configures a TableEvaluator.
type Option func(*settings)

// WithCategorical fixes the categorical columns. Every other column is
// numerical; no inference is done.
func WithCategorical(columns ...string) Option {
	return func(s *settings) { s.categorical = append([]string{}, columns...) }
}

// WithUniqueThreshold sets the distinct-value count a numeric column must
// exceed to be treated as numerical when no categorical list is given.
func WithUniqueThreshold(n int) Option {
	return func(s *settings) { s.uniqueThreshold = n }
}

// WithNSamples subsamples both datasets to n rows. It must not exceed either
// row count.
func WithNSamples(n int) Option {
	return func(s *settings) { s.nSamples = n }
}

// WithSeed seeds the row subsampling.
func WithSeed(seed uint64) Option {
	return func(s *settings) { s.seed = seed }
}

// WithMetric sets the correlation used to compare association matrices:
// "pearsonr", "spearmanr" or "kendalltau".
func WithMetric(name string) Option {
	return func(s *settings) { s.metric = name }
}

// WithEstimatorSeed seeds the default estimator panels.
func WithEstimatorSeed(seed int64) Option {
	return func(s *settings) { s.estimatorSeed = seed }
}

// WithWorkers bounds the concurrent estimator fits. 0 means one per CPU.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithMixedMeasure selects the association measure of numerical/categorical pairs.
func WithMixedMeasure(m association.MixedMeasure) Option {
	return func(s *settings) { s.mixed = m }
}

// WithRenderer hands every Evaluate result to r.
func WithRenderer(r Renderer) Option {
	return func(s *settings) { s.renderer = r }
}

// WithMetrics records stage timings and estimator fits.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *settings) { s.telemetry = m }
}

// WithConfig applies a loaded configuration. Options after it override it.
func WithConfig(c *config.Evaluation) Option {
	return func(s *settings) {
		if c == nil {
			return
		}
		if len(c.CategoricalColumns) > 0 {
			s.categorical = append([]string{}, c.CategoricalColumns...)
		}
		s.uniqueThreshold = c.UniqueThreshold
		s.nSamples = c.NSamples
		s.seed = c.Seed
		if c.Metric != "" {
			s.metric = c.Metric
		}
		if c.NSamplesDistance > 0 {
			s.nSamplesDistance = c.NSamplesDistance
		}
		s.estimatorSeed = c.EstimatorSeed
		s.kfold = c.KFold
		s.workers = c.Workers
		s.logLevel = c.LogLevel
	}
}

// evalSettings は Evaluate 1 回分の上書き設定
type evalSettings struct {
	metric           string
	nSamplesDistance int
	kfold            bool
	panel            efficacy.Panel
}

// EvaluateOption overrides a setting for a single Evaluate call.
type EvaluateOption func(*evalSettings)

// UseMetric overrides the association-matrix correlation for one call.
func UseMetric(name string) EvaluateOption {
	return func(s *evalSettings) { s.metric = name }
}

// UseDistanceSamples overrides the row cap of the privacy distance.
func UseDistanceSamples(n int) EvaluateOption {
	return func(s *evalSettings) { s.nSamplesDistance = n }
}

// UseKFold runs all folds instead of only the first.
func UseKFold(b bool) EvaluateOption {
	return func(s *evalSettings) { s.kfold = b }
}

// UsePanel replaces the default estimator panel.
func UsePanel(p efficacy.Panel) EvaluateOption {
	return func(s *evalSettings) { s.panel = p }
}
