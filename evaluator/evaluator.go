// Package evaluator is the entry point of synthcheck. A TableEvaluator aligns
// a real and a synthetic table once and then runs any of the comparisons,
// individually or all together through Evaluate.
//
//	ev, err := evaluator.New(real, fake, evaluator.WithCategorical("sex", "smoker"))
//	if err != nil { ... }
//	res, err := ev.Evaluate(ctx, "smoker", "class")
//	fmt.Println(res.SimilarityScore)
package evaluator

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/synthcheck/align"
	"github.com/YuminosukeSato/synthcheck/association"
	"github.com/YuminosukeSato/synthcheck/duplicates"
	"github.com/YuminosukeSato/synthcheck/efficacy"
	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/moments"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/pkg/log"
	"github.com/YuminosukeSato/synthcheck/privacy"
)

// TableEvaluator compares one aligned real/fake pair. It holds no state
// beyond the aligned data and its settings, so methods may be called in any
// order and concurrently.
type TableEvaluator struct {
	data *align.Aligned
	cfg  settings
}

// New validates and aligns real and fake. The inputs are not modified.
func New(real, fake *frame.Frame, opts ...Option) (*TableEvaluator, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logLevel != "" {
		level, err := log.ParseLevel(cfg.logLevel)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}
	if _, err := metrics.ParseCorrelation(cfg.metric); err != nil {
		return nil, err
	}

	done := cfg.telemetry.Time("align")
	data, err := align.Align(real, fake, align.Options{
		Categorical:     cfg.categorical,
		UniqueThreshold: cfg.uniqueThreshold,
		NSamples:        cfg.nSamples,
		Seed:            cfg.seed,
	})
	done()
	if err != nil {
		return nil, err
	}
	return &TableEvaluator{data: data, cfg: cfg}, nil
}

// Real returns the aligned real frame.
func (e *TableEvaluator) Real() *frame.Frame { return e.data.Real }

// Fake returns the aligned fake frame.
func (e *TableEvaluator) Fake() *frame.Frame { return e.data.Fake }

// Columns returns the numerical/categorical partition.
func (e *TableEvaluator) Columns() align.Columns { return e.data.Columns }

// NSamples returns the row count of both aligned frames.
func (e *TableEvaluator) NSamples() int { return e.data.NSamples }

// BasicStatisticalEvaluation returns the Spearman correlation between the
// moments of the numerical columns of both datasets.
func (e *TableEvaluator) BasicStatisticalEvaluation() (float64, error) {
	c, err := e.Moments()
	if err != nil {
		return 0, err
	}
	return c.Correlation, nil
}

// Moments returns the full moment comparison table.
func (e *TableEvaluator) Moments() (*moments.Comparison, error) {
	return moments.Compare(e.data.Real, e.data.Fake, e.data.Columns.Numerical)
}

// AssociationMatrices computes the association matrix of each dataset.
func (e *TableEvaluator) AssociationMatrices() (real, fake *association.Matrix, err error) {
	opt := association.WithMixedMeasure(e.cfg.mixed)
	if real, err = association.Compute(e.data.Real, e.data.Columns.Categorical, opt); err != nil {
		return nil, nil, err
	}
	if fake, err = association.Compute(e.data.Fake, e.data.Columns.Categorical, opt); err != nil {
		return nil, nil, err
	}
	return real, fake, nil
}

// CorrelationCorrelation correlates the off-diagonal association entries of
// both datasets with the configured metric.
func (e *TableEvaluator) CorrelationCorrelation() (float64, error) {
	return e.correlationCorrelation(e.cfg.metric)
}

func (e *TableEvaluator) correlationCorrelation(metric string) (float64, error) {
	fn, err := metrics.ParseCorrelation(metric)
	if err != nil {
		return 0, err
	}
	real, fake, err := e.AssociationMatrices()
	if err != nil {
		return 0, err
	}
	return association.Correlation(real, fake, fn)
}

// CorrelationDistance compares the association matrices with how: one of
// "euclidean", "mae", "rmse" or "cosine".
func (e *TableEvaluator) CorrelationDistance(how string) (float64, error) {
	d, err := association.ParseDistance(how)
	if err != nil {
		return 0, err
	}
	real, fake, err := e.AssociationMatrices()
	if err != nil {
		return 0, err
	}
	return association.MatrixDistance(real, fake, d)
}

// RowDistance returns the mean and std of the distance of every fake row to
// its nearest real row, using at most n rows per side (n <= 0: 20000).
func (e *TableEvaluator) RowDistance(n int) (privacy.Distance, error) {
	return privacy.RowDistance(e.data.Real, e.data.Fake, e.data.Columns.Categorical, n)
}

// Copies returns the fake rows that also occur in real.
func (e *TableEvaluator) Copies() (*frame.Frame, error) {
	return duplicates.Copies(e.data.Real, e.data.Fake)
}

// CountCopies returns the number of fake rows that also occur in real.
func (e *TableEvaluator) CountCopies() (int, error) {
	return duplicates.CountCopies(e.data.Real, e.data.Fake)
}

// Duplicates returns the rows repeated within each dataset.
func (e *TableEvaluator) Duplicates() (real, fake *frame.Frame) {
	return duplicates.Duplicates(e.data.Real, e.data.Fake)
}

// CountDuplicates returns the number of rows repeated within each dataset.
func (e *TableEvaluator) CountDuplicates() (real, fake int) {
	return duplicates.CountDuplicates(e.data.Real, e.data.Fake)
}

// ColumnCorrelations compares the sorted values of every column pair and
// returns the per-column values and their mean.
func (e *TableEvaluator) ColumnCorrelations() ([]association.ColumnCorrelation, float64, error) {
	return association.ColumnCorrelations(e.data.Real, e.data.Fake, e.data.Columns.Categorical)
}

// EstimatorEvaluation trains the default panel for targetType ("class" or
// "regr") on both datasets and compares the scores.
func (e *TableEvaluator) EstimatorEvaluation(ctx context.Context, targetCol, targetType string, kfold bool) (*efficacy.Result, error) {
	return e.estimatorEvaluation(ctx, targetCol, targetType, kfold, nil)
}

func (e *TableEvaluator) estimatorEvaluation(ctx context.Context, targetCol, targetType string, kfold bool, panel efficacy.Panel) (*efficacy.Result, error) {
	tt, err := efficacy.ParseTargetType(targetType)
	if err != nil {
		return nil, err
	}
	opts := efficacy.Options{
		TargetCol:     targetCol,
		TargetType:    tt,
		KFold:         kfold,
		Workers:       e.cfg.workers,
		EstimatorSeed: e.cfg.estimatorSeed,
		Panel:         panel,
	}
	if e.cfg.telemetry != nil {
		opts.Observer = e.cfg.telemetry
	}
	return efficacy.Evaluate(ctx, e.data, opts)
}

// StatisticalDistances returns, per numerical column, the Jensen-Shannon
// distance (25 bins from the real column, plus the mean over columns) and
// the two-sample Kolmogorov-Smirnov statistic and p-value.
func (e *TableEvaluator) StatisticalDistances() (js, ks Section, err error) {
	js = Section{Name: SectionJensenShannon}
	ks = Section{Name: SectionKS}
	var sum float64
	for _, name := range e.data.Columns.Numerical {
		rc, _ := e.data.Real.Column(name)
		fc, _ := e.data.Fake.Column(name)
		r, f := rc.Floats(), fc.Floats()

		d, err := metrics.JSDistance(r, f, metrics.DefaultHistogramBins)
		if err != nil {
			return js, ks, errors.Wrapf(err, "column %s", name)
		}
		js.add(name, map[string]float64{"js_distance": d})
		sum += d

		res, err := metrics.KolmogorovSmirnov(r, f)
		if err != nil {
			return js, ks, errors.Wrapf(err, "column %s", name)
		}
		ks.add(name, map[string]float64{"statistic": res.Statistic, "p-value": res.PValue})
	}
	mean := math.NaN()
	if n := len(e.data.Columns.Numerical); n > 0 {
		mean = sum / float64(n)
	}
	js.add(RowMean, map[string]float64{"js_distance": mean})
	return js, ks, nil
}

// Evaluate runs every comparison and aggregates them into a Result. The
// similarity score is the mean of the moment correlation, the association
// correlation and the estimator score. Any failure aborts the whole run.
func (e *TableEvaluator) Evaluate(ctx context.Context, targetCol, targetType string, opts ...EvaluateOption) (*Result, error) {
	es := evalSettings{
		metric:           e.cfg.metric,
		nSamplesDistance: e.cfg.nSamplesDistance,
		kfold:            e.cfg.kfold,
	}
	for _, opt := range opts {
		opt(&es)
	}

	res := &Result{ID: uuid.New(), TargetCol: targetCol, TargetType: targetType}
	logger := log.GetLoggerWithName("evaluator").With(log.EvaluationIDKey, res.ID.String())
	logger.Info("evaluation started",
		log.TargetKey, targetCol,
		log.TargetTypeKey, targetType,
		log.SamplesKey, e.data.NSamples,
	)

	var (
		basic, corr, colMean, rmse, mae float64
		eff                             *efficacy.Result
		dist                            privacy.Distance
		copies                          int
		js, ks                          Section
	)
	stages := []struct {
		name string
		run  func() error
	}{
		{"basic_statistics", func() (err error) { basic, err = e.BasicStatisticalEvaluation(); return }},
		{"correlation_correlation", func() (err error) { corr, err = e.correlationCorrelation(es.metric); return }},
		{"column_correlations", func() (err error) { _, colMean, err = e.ColumnCorrelations(); return }},
		{"estimator_evaluation", func() (err error) {
			eff, err = e.estimatorEvaluation(ctx, targetCol, targetType, es.kfold, es.panel)
			return
		}},
		{"row_distance", func() (err error) { dist, err = e.RowDistance(es.nSamplesDistance); return }},
		{"copies", func() (err error) { copies, err = e.CountCopies(); return }},
		{"correlation_distance", func() (err error) {
			if rmse, err = e.CorrelationDistance(string(association.RMSE)); err != nil {
				return err
			}
			mae, err = e.CorrelationDistance(string(association.MAE))
			return
		}},
		{"statistical_distances", func() (err error) { js, ks, err = e.StatisticalDistances(); return }},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done := e.cfg.telemetry.Time(st.name)
		err := st.run()
		done()
		if err != nil {
			logger.Error("evaluation failed", err, log.StageKey, st.name)
			return nil, err
		}
		logger.Debug("stage finished", log.StageKey, st.name)
	}

	res.SimilarityScore = (basic + corr + eff.Score) / 3

	overview := Section{Name: SectionOverview}
	overview.addValue(RowBasicStatistics, basic)
	overview.addValue(RowCorrelation, corr)
	overview.addValue(RowColumnCorrelations, colMean)
	effSection := Section{Name: SectionClassifier}
	if eff.TargetType == efficacy.Regression {
		effSection.Name = SectionRegressor
		overview.addValue(RowCorrelationRMSE, eff.Score)
	} else {
		overview.addValue(RowMAPEEstimators, eff.Score)
	}
	overview.addValue(RowSimilarity, res.SimilarityScore)
	for _, row := range eff.Rows {
		effSection.add(row.Estimator, row.Values)
	}

	privacySection := Section{Name: SectionPrivacy}
	privacySection.addValue(RowCopies, float64(copies))
	privacySection.addValue(RowNearestMean, dist.Mean)
	privacySection.addValue(RowNearestStd, dist.Std)

	misc := Section{Name: SectionMiscellaneous}
	misc.addValue(RowDistanceRMSE, rmse)
	misc.addValue(RowDistanceMAE, mae)

	res.Sections = []Section{overview, effSection, privacySection, js, ks, misc}
	logger.Info("evaluation finished", log.ScoreKey, res.SimilarityScore)

	if e.cfg.renderer != nil {
		if err := e.cfg.renderer.Render(ctx, res); err != nil {
			return nil, errors.Wrap(err, "render result")
		}
	}
	return res, nil
}
