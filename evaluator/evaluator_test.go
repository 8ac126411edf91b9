package evaluator

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/synthcheck/config"
	"github.com/YuminosukeSato/synthcheck/efficacy"
	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/pkg/telemetry"
	"github.com/YuminosukeSato/synthcheck/sklearn/tree"
)

// insurance は 3 つの数値列と 2 つのカテゴリ列を持つテーブルを作る
func insurance(n int, seed uint64) *frame.Frame {
	rng := rand.New(rand.NewPCG(seed, 0))
	age := make([]float64, n)
	bmi := make([]float64, n)
	charges := make([]float64, n)
	sex := make([]string, n)
	smoker := make([]string, n)
	for i := 0; i < n; i++ {
		age[i] = float64(18 + rng.IntN(47))
		bmi[i] = 20 + 10*rng.Float64()
		sex[i] = []string{"female", "male"}[rng.IntN(2)]
		smoker[i] = "no"
		if rng.Float64() < 0.2+0.01*(bmi[i]-20) {
			smoker[i] = "yes"
		}
		charges[i] = 250*age[i] + 300*bmi[i] + 1000*rng.NormFloat64()
		if smoker[i] == "yes" {
			charges[i] += 20000
		}
	}
	return frame.MustNew(
		frame.NewNumeric("age", age),
		frame.NewCategorical("sex", sex, nil),
		frame.NewNumeric("bmi", bmi),
		frame.NewCategorical("smoker", smoker, nil),
		frame.NewNumeric("charges", charges),
	)
}

// perturb は先頭 k 行の数値列 1 つに小さなノイズを加える
func perturb(f *frame.Frame, k int, seed uint64) *frame.Frame {
	rng := rand.New(rand.NewPCG(seed, 1))
	bmi, _ := f.Column("bmi")
	values := bmi.Floats()
	for i := 0; i < k; i++ {
		values[i] += 0.01 * rng.NormFloat64()
	}
	out, err := f.WithColumn(frame.NewNumeric("bmi", values))
	if err != nil {
		panic(err)
	}
	return out
}

func TestNew_Alignment(t *testing.T) {
	real := insurance(120, 1)
	fake, err := insurance(100, 2).Reorder([]string{"charges", "smoker", "bmi", "sex", "age"})
	require.NoError(t, err)

	ev, err := New(real, fake, WithCategorical("sex", "smoker"), WithSeed(3))
	require.NoError(t, err)
	assert.Equal(t, 100, ev.NSamples())
	assert.Equal(t, 100, ev.Real().NRows())
	assert.Equal(t, 100, ev.Fake().NRows())
	assert.Equal(t, ev.Real().Names(), ev.Fake().Names())
	assert.Equal(t, []string{"age", "bmi", "charges"}, ev.Columns().Numerical)
	assert.Equal(t, 120, real.NRows(), "input must not be modified")
}

func TestNew_Errors(t *testing.T) {
	real := insurance(50, 1)

	_, err := New(real, insurance(40, 2), WithNSamples(45))
	var rows *errors.InsufficientRowsError
	require.True(t, errors.As(err, &rows))
	assert.Equal(t, 45, rows.Requested)

	_, err = New(real, real.Drop("bmi"))
	var schema *errors.SchemaMismatchError
	require.True(t, errors.As(err, &schema))
	assert.Equal(t, []string{"bmi"}, schema.Missing)

	_, err = New(real, real, WithMetric("cosine"))
	assert.Error(t, err)
}

func TestIdenticalData(t *testing.T) {
	real := insurance(200, 4)
	ev, err := New(real, real.Copy(), WithCategorical("sex", "smoker"))
	require.NoError(t, err)

	d, err := ev.CorrelationDistance("euclidean")
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)

	dist, err := ev.RowDistance(0)
	require.NoError(t, err)
	assert.InDelta(t, 0, dist.Mean, 1e-12)
	assert.InDelta(t, 0, dist.Std, 1e-12)

	n, err := ev.CountCopies()
	require.NoError(t, err)
	assert.Equal(t, ev.NSamples(), n)

	basic, err := ev.BasicStatisticalEvaluation()
	require.NoError(t, err)
	assert.InDelta(t, 1, basic, 1e-12)
}

func TestNoisyCopyScenario(t *testing.T) {
	real := insurance(1000, 5)
	fake := perturb(real, 50, 6)
	ev, err := New(real, fake, WithCategorical("sex", "smoker"))
	require.NoError(t, err)

	basic, err := ev.BasicStatisticalEvaluation()
	require.NoError(t, err)
	assert.Greater(t, basic, 0.95)

	d, err := ev.CorrelationDistance("euclidean")
	require.NoError(t, err)
	assert.Less(t, d, 0.05)

	n, err := ev.CountCopies()
	require.NoError(t, err)
	assert.Equal(t, 950, n)

	r, f := ev.CountDuplicates()
	assert.Equal(t, 0, r)
	assert.Equal(t, 0, f)
}

func TestMissingCategoryInFake(t *testing.T) {
	real := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3, 4, 5, 6}),
		frame.NewNumeric("y", []float64{2, 1, 4, 3, 6, 5}),
		frame.NewCategorical("c", []string{"a", "b", "c", "a", "b", "c"}, nil),
	)
	fake := frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3, 4, 5, 6}),
		frame.NewNumeric("y", []float64{2, 1, 4, 3, 6, 5}),
		frame.NewCategorical("c", []string{"a", "b", "a", "a", "b", "b"}, nil),
	)
	ev, err := New(real, fake, WithCategorical("c"))
	require.NoError(t, err)

	dist, err := ev.RowDistance(0)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(dist.Mean))
}

func TestCorrelationDistance_UnknownKind(t *testing.T) {
	ev, err := New(insurance(30, 7), insurance(30, 8), WithCategorical("sex", "smoker"))
	require.NoError(t, err)
	_, err = ev.CorrelationDistance("manhattan")
	var kind *errors.InvalidDistanceKindError
	assert.True(t, errors.As(err, &kind))
}

type recordingRenderer struct{ got *Result }

func (r *recordingRenderer) Render(_ context.Context, res *Result) error {
	r.got = res
	return nil
}

func smallPanel() efficacy.Panel {
	return efficacy.Panel{
		{Name: "DecisionTreeClassifier", Estimator: tree.NewDecisionTreeClassifier(tree.WithMaxDepth(4), tree.WithRandomState(42))},
	}
}

func TestEvaluate_Sections(t *testing.T) {
	renderer := &recordingRenderer{}
	reg := prometheus.NewRegistry()
	m, err := telemetry.New(reg)
	require.NoError(t, err)

	ev, err := New(insurance(200, 9), insurance(200, 10),
		WithCategorical("sex", "smoker"), WithRenderer(renderer), WithMetrics(m))
	require.NoError(t, err)

	res, err := ev.Evaluate(context.Background(), "smoker", "class", UsePanel(smallPanel()), UseKFold(true))
	require.NoError(t, err)
	assert.Same(t, res, renderer.got)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.ID))

	var names []string
	for _, s := range res.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{SectionOverview, SectionClassifier, SectionPrivacy, SectionJensenShannon, SectionKS, SectionMiscellaneous}, names)

	overview, _ := res.Section(SectionOverview)
	basic, _ := overview.Get(RowBasicStatistics, ValueKey)
	corr, _ := overview.Get(RowCorrelation, ValueKey)
	mape, ok := overview.Get(RowMAPEEstimators, ValueKey)
	require.True(t, ok)
	score, _ := overview.Get(RowSimilarity, ValueKey)
	assert.InDelta(t, (basic+corr+mape)/3, score, 1e-12)
	assert.Equal(t, res.SimilarityScore, score)

	js, _ := res.Section(SectionJensenShannon)
	assert.Len(t, js.Rows, 4) // age, bmi, charges, mean
	ks, _ := res.Section(SectionKS)
	p, ok := ks.Get("age", "p-value")
	require.True(t, ok)
	assert.True(t, p >= 0 && p <= 1)

	priv, _ := res.Section(SectionPrivacy)
	_, ok = priv.Get(RowNearestMean, ValueKey)
	assert.True(t, ok)

	fits := testutil.ToFloat64(m.EstimatorFits.WithLabelValues("DecisionTreeClassifier", "real", telemetry.OutcomeOK))
	assert.Equal(t, float64(efficacy.NFolds), fits)
	assert.Len(t, res.Map()[SectionClassifier], 1)
	assert.Contains(t, res.Map()[SectionClassifier], "DecisionTreeClassifier")
}

func TestEvaluate_AbortsWithoutPartialResult(t *testing.T) {
	renderer := &recordingRenderer{}
	ev, err := New(insurance(60, 11), insurance(60, 12), WithCategorical("sex", "smoker"), WithRenderer(renderer))
	require.NoError(t, err)

	res, err := ev.Evaluate(context.Background(), "smoker", "cluster")
	var tt *errors.InvalidTargetTypeError
	require.True(t, errors.As(err, &tt))
	assert.Nil(t, res)
	assert.Nil(t, renderer.got)
}

func TestEvaluate_Regression(t *testing.T) {
	ev, err := New(insurance(150, 13), insurance(150, 14), WithCategorical("sex", "smoker"), WithEstimatorSeed(7))
	require.NoError(t, err)

	res, err := ev.Evaluate(context.Background(), "charges", "regr", UseDistanceSamples(50), UseMetric("spearmanr"))
	require.NoError(t, err)
	_, ok := res.Section(SectionRegressor)
	assert.True(t, ok)
	overview, _ := res.Section(SectionOverview)
	_, ok = overview.Get(RowCorrelationRMSE, ValueKey)
	assert.True(t, ok)
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.CategoricalColumns = []string{"sex", "smoker"}
	cfg.NSamples = 40
	cfg.Seed = 9

	ev, err := New(insurance(60, 15), insurance(50, 16), WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, 40, ev.NSamples())
	assert.Equal(t, []string{"sex", "smoker"}, ev.Columns().Categorical)

	// 後から渡したオプションが優先される
	ev, err = New(insurance(60, 15), insurance(50, 16), WithConfig(cfg), WithNSamples(30))
	require.NoError(t, err)
	assert.Equal(t, 30, ev.NSamples())
}

func TestColumnCorrelations_Identical(t *testing.T) {
	real := insurance(80, 17)
	ev, err := New(real, real.Copy(), WithCategorical("sex", "smoker"))
	require.NoError(t, err)

	per, mean, err := ev.ColumnCorrelations()
	require.NoError(t, err)
	assert.Len(t, per, 5)
	assert.InDelta(t, 1, mean, 1e-9)
}
