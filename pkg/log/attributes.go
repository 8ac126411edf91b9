package log

// Evaluation context.
const (
	// ComponentKey identifies the package emitting the record ("align", "efficacy", ...).
	ComponentKey = "component"

	// EvaluationIDKey ties together all records of one Evaluate call.
	EvaluationIDKey = "evaluation.id"

	// StageKey names the evaluation stage ("basic_statistics", "privacy", ...).
	StageKey = "evaluation.stage"

	// ScoreKey records a stage score.
	ScoreKey = "evaluation.score"

	// TargetKey and TargetTypeKey describe the ML efficacy target.
	TargetKey     = "evaluation.target"
	TargetTypeKey = "evaluation.target_type"
)

// Data shape.
const (
	SamplesKey     = "data.samples"
	FeaturesKey    = "data.features"
	ColumnKey      = "data.column"
	NumericalKey   = "data.numerical_columns"
	CategoricalKey = "data.categorical_columns"
	DatasetKey     = "data.dataset"
)

// Estimators and training.
const (
	ModelNameKey    = "model.name"
	OperationKey    = "ml.operation"
	FoldKey         = "ml.fold"
	IterationKey    = "training.iteration"
	LossKey         = "metrics.loss"
	RandomSeedKey   = "config.random_seed"
	WorkersKey      = "config.workers"
	DistanceKindKey = "config.distance"
	ParamsKey       = "model.params"
)

// Performance.
const (
	DurationMsKey = "perf.duration_ms"
)

// Errors.
const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
	ErrorTypeKey      = "error.type"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	DatasetReal = "real"
	DatasetFake = "fake"
)
