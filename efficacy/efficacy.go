// Package efficacy trains the same estimator panel on the real and on the
// synthetic data and compares how well each performs.
//
// A fold goes through three steps: every (member, dataset) pair is cloned
// and fit on its own goroutine, the fold waits for all of them, and only then
// are the test splits scored. Results are written to pre-indexed slots, so
// the number of workers never changes the output.
package efficacy

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/synthcheck/align"
	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/metrics"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/pkg/log"
	"github.com/YuminosukeSato/synthcheck/preprocessing"
	"github.com/YuminosukeSato/synthcheck/sklearn/model_selection"
)

// DefaultEstimatorSeed seeds the default panel.
const DefaultEstimatorSeed = 42

// NFolds is the number of cross-validation folds.
const NFolds = 5

// FitObserver is notified after every fit. pkg/telemetry implements it.
type FitObserver interface {
	ObserveFit(estimator, dataset string, took time.Duration, err error)
}

// Options configures Evaluate.
type Options struct {
	TargetCol  string
	TargetType TargetType
	// KFold uses all NFolds folds; otherwise only the first one.
	KFold bool
	// Workers bounds concurrent fits. 0 means runtime.NumCPU().
	Workers int
	// EstimatorSeed seeds the default panel. Ignored when Panel is set.
	EstimatorSeed int64
	Panel         Panel
	Observer      FitObserver
}

// Row is one estimator's fold-averaged metrics.
type Row struct {
	Estimator string
	Values    map[string]float64
}

// Result is the efficacy table plus its scalar reduction.
type Result struct {
	TargetType TargetType
	// Metrics lists the metric names in table order.
	Metrics []string
	Rows    []Row
	Folds   []model_selection.Fold
	Score   float64
}

// Get returns the value of metric for estimator.
func (r *Result) Get(estimator, metric string) (float64, bool) {
	for _, row := range r.Rows {
		if row.Estimator == estimator {
			v, ok := row.Values[metric]
			return v, ok
		}
	}
	return 0, false
}

// Column returns metric across estimators in panel order.
func (r *Result) Column(metric string) []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Values[metric]
	}
	return out
}

var (
	classificationMetrics = []string{
		"f1_real", "f1_fake", "accuracy_real", "accuracy_fake",
		"recall_real", "recall_fake", "f1_real_on_fake", "f1_fake_on_real",
	}
	regressionMetrics = []string{"rmse_real", "rmse_fake", "rmse_real_on_fake", "rmse_fake_on_real"}
)

// dataset is one side of the comparison, encoded and split into X / y.
type dataset struct {
	name string
	X    *mat.Dense
	y    []float64
}

// Evaluate runs the efficacy comparison on already-aligned data.
func Evaluate(ctx context.Context, data *align.Aligned, opts Options) (*Result, error) {
	logger := log.GetLoggerWithName("efficacy")

	if _, err := ParseTargetType(string(opts.TargetType)); err != nil {
		return nil, err
	}
	panel := opts.Panel
	if panel == nil {
		var err error
		if panel, err = DefaultPanel(opts.TargetType, opts.EstimatorSeed); err != nil {
			return nil, err
		}
	}
	if err := panel.Validate(); err != nil {
		return nil, err
	}
	if logger.Enabled(ctx, log.LevelDebug) {
		params := panel.Params()
		for _, name := range panel.names() {
			if ps, ok := params[name]; ok {
				logger.Debug("panel member", log.ModelNameKey, name, log.ParamsKey, ps)
			}
		}
	}

	real, fake, err := encode(data, opts.TargetCol)
	if err != nil {
		return nil, err
	}

	folds, err := model_selection.NewKFold(NFolds, false, 0).Split(len(real.y))
	if err != nil {
		return nil, errors.Wrap(err, "efficacy")
	}
	if !opts.KFold {
		folds = folds[:1]
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger.Info("estimator evaluation started",
		log.TargetKey, opts.TargetCol,
		log.TargetTypeKey, string(opts.TargetType),
		log.SamplesKey, len(real.y),
		log.WorkersKey, workers,
	)

	metricNames := classificationMetrics
	if opts.TargetType == Regression {
		metricNames = regressionMetrics
	}
	sums := make([][]float64, len(panel))
	for i := range sums {
		sums[i] = make([]float64, len(metricNames))
	}

	for k, fold := range folds {
		fitted, err := fitFold(ctx, panel, k, fold, real, fake, workers, opts.Observer)
		if err != nil {
			return nil, err
		}
		for m, member := range panel {
			values, err := scoreFold(opts.TargetType, member.Name, k, fitted[m], fold, real, fake)
			if err != nil {
				return nil, err
			}
			for j, v := range values {
				sums[m][j] += v
			}
		}
		logger.Debug("fold finished", log.FoldKey, k)
	}

	res := &Result{TargetType: opts.TargetType, Metrics: metricNames, Folds: folds}
	for m, name := range panel.names() {
		row := Row{Estimator: name, Values: make(map[string]float64, len(metricNames))}
		for j, metric := range metricNames {
			row.Values[metric] = sums[m][j] / float64(len(folds))
		}
		res.Rows = append(res.Rows, row)
	}
	if res.Score, err = score(res); err != nil {
		return nil, err
	}
	logger.Info("estimator evaluation finished", log.ScoreKey, res.Score)
	return res, nil
}

func encode(data *align.Aligned, target string) (real, fake dataset, err error) {
	r, f, err := preprocessing.OrdinalEncode(data.Real, data.Fake, data.Columns.Categorical)
	if err != nil {
		return real, fake, err
	}
	if real, err = split(log.DatasetReal, r, target); err != nil {
		return real, fake, err
	}
	fake, err = split(log.DatasetFake, f, target)
	return real, fake, err
}

func split(name string, f *frame.Frame, target string) (dataset, error) {
	col, ok := f.Column(target)
	if !ok {
		return dataset{}, errors.NewSchemaMismatchError([]string{target}, nil)
	}
	X, err := f.Drop(target).ToMatrix()
	if err != nil {
		return dataset{}, err
	}
	return dataset{name: name, X: X, y: col.Floats()}, nil
}

func (d dataset) rows(idx []int) (*mat.Dense, *mat.VecDense) {
	_, c := d.X.Dims()
	X := mat.NewDense(len(idx), c, nil)
	y := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		X.SetRow(i, d.X.RawRowView(r))
		y.SetVec(i, d.y[r])
	}
	return X, y
}

// fitFold returns fitted[member][0 = real, 1 = fake].
func fitFold(ctx context.Context, panel Panel, k int, fold model_selection.Fold,
	real, fake dataset, workers int, obs FitObserver) ([][2]capable, error) {

	fitted := make([][2]capable, len(panel))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for m, member := range panel {
		template := member.Estimator.(capable)
		for d, ds := range [2]dataset{real, fake} {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				X, y := ds.rows(fold.Train)
				est, ok := template.Clone().(capable)
				if !ok {
					return errors.NewUnsupportedEstimatorError(member.Name, []string{"Clone"})
				}
				start := time.Now()
				err := errors.SafeExecute(member.Name+".Fit", func() error {
					return est.Fit(X, y)
				})
				if obs != nil {
					obs.ObserveFit(member.Name, ds.name, time.Since(start), err)
				}
				if err != nil {
					return errors.NewEstimatorFailureError(member.Name, k, ds.name, log.OperationFit, err)
				}
				fitted[m][d] = est
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fitted, nil
}

// measure は 1 つの指標の計算 (指標関数, 正解, 予測, 予測の出所)
type measure struct {
	fn           func(yTrue, yPred *mat.VecDense) (float64, error)
	yTrue, yPred *mat.VecDense
	dataset      string
}

// scoreFold predicts with both fitted models on both test splits. A failure
// names the model's training set and, for cross predictions, the split it
// was applied to ("real_on_fake").
func scoreFold(tt TargetType, name string, k int, models [2]capable, fold model_selection.Fold,
	real, fake dataset) ([]float64, error) {

	sets := [2]dataset{real, fake}
	tests := [2]*mat.Dense{}
	truth := [2]*mat.VecDense{}
	for d, ds := range sets {
		tests[d], truth[d] = ds.rows(fold.Test)
	}

	// preds[model][split]
	var preds [2][2]*mat.VecDense
	for m := range models {
		for d := range sets {
			label := predictionLabel(sets[m], sets[d])
			var pred mat.Matrix
			err := errors.SafeExecute(name+".Predict", func() error {
				var err error
				pred, err = models[m].Predict(tests[d])
				return err
			})
			if err == nil {
				preds[m][d], err = metrics.VecFromMatrix(pred)
			}
			if err != nil {
				return nil, errors.NewEstimatorFailureError(name, k, label, log.OperationPredict, err)
			}
		}
	}

	rr, ff := predictionLabel(real, real), predictionLabel(fake, fake)
	rf, fr := predictionLabel(real, fake), predictionLabel(fake, real)
	var plan []measure
	if tt == Classification {
		plan = []measure{
			{metrics.F1Micro, truth[0], preds[0][0], rr},
			{metrics.F1Micro, truth[1], preds[1][1], ff},
			{metrics.Accuracy, truth[0], preds[0][0], rr},
			{metrics.Accuracy, truth[1], preds[1][1], ff},
			{metrics.RecallMicro, truth[0], preds[0][0], rr},
			{metrics.RecallMicro, truth[1], preds[1][1], ff},
			{metrics.F1Micro, truth[1], preds[0][1], rf},
			{metrics.F1Micro, truth[0], preds[1][0], fr},
		}
	} else {
		plan = []measure{
			{metrics.RMSE, truth[0], preds[0][0], rr},
			{metrics.RMSE, truth[1], preds[1][1], ff},
			{metrics.RMSE, truth[1], preds[0][1], rf},
			{metrics.RMSE, truth[0], preds[1][0], fr},
		}
	}

	out := make([]float64, len(plan))
	for i, p := range plan {
		v, err := p.fn(p.yTrue, p.yPred)
		if err != nil {
			return nil, errors.NewEstimatorFailureError(name, k, p.dataset, log.OperationScore, err)
		}
		out[i] = v
	}
	return out, nil
}

// predictionLabel labels a prediction by training set and test split.
func predictionLabel(trained, tested dataset) string {
	if trained.name == tested.name {
		return trained.name
	}
	return trained.name + "_on_" + tested.name
}

// score reduces the table: 1 - MAPE of the F1 vectors for classification,
// Spearman correlation of the RMSE vectors for regression.
func score(r *Result) (float64, error) {
	if r.TargetType == Classification {
		real := mat.NewVecDense(len(r.Rows), r.Column("f1_real"))
		fake := mat.NewVecDense(len(r.Rows), r.Column("f1_fake"))
		mape, err := metrics.MAPE(real, fake)
		if err != nil {
			return 0, err
		}
		return 1 - mape, nil
	}
	return metrics.Spearman(r.Column("rmse_real"), r.Column("rmse_fake")), nil
}
