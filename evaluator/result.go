package evaluator

import (
	"context"

	"github.com/google/uuid"
)

// Section and row names of an evaluation result.
const (
	SectionOverview       = "Overview Results"
	SectionClassifier     = "Classifier Results"
	SectionRegressor      = "Regressor RMSE-scores"
	SectionPrivacy        = "Privacy Results"
	SectionJensenShannon  = "Jensen-Shannon distance"
	SectionKS             = "Kolmogorov-Smirnov statistic"
	SectionMiscellaneous  = "Miscellaneous Results"
	RowBasicStatistics    = "Basic statistics"
	RowCorrelation        = "Correlation column correlations"
	RowColumnCorrelations = "Mean Correlation between fake and real columns"
	RowMAPEEstimators     = "1 - MAPE Estimator results"
	RowCorrelationRMSE    = "Correlation RMSE"
	RowSimilarity         = "Similarity Score"
	RowCopies             = "Duplicate rows between sets (real/fake)"
	RowNearestMean        = "nearest neighbor in real mean"
	RowNearestStd         = "nearest neighbor in real std"
	RowDistanceRMSE       = "Column Correlation Distance RMSE"
	RowDistanceMAE        = "Column Correlation distance MAE"
	RowMean               = "mean"

	// ValueKey is the metric name of single-valued rows.
	ValueKey = "result"
)

// Row is one labelled row of a section.
type Row struct {
	Label  string
	Values map[string]float64
}

// Section is a named table. Rows keep insertion order.
type Section struct {
	Name string
	Rows []Row
}

func (s *Section) add(label string, values map[string]float64) {
	s.Rows = append(s.Rows, Row{Label: label, Values: values})
}

func (s *Section) addValue(label string, v float64) {
	s.add(label, map[string]float64{ValueKey: v})
}

// Get returns the value of metric in row label.
func (s Section) Get(label, metric string) (float64, bool) {
	for _, r := range s.Rows {
		if r.Label == label {
			v, ok := r.Values[metric]
			return v, ok
		}
	}
	return 0, false
}

// Map returns the section as row label -> metric -> value.
func (s Section) Map() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(s.Rows))
	for _, r := range s.Rows {
		out[r.Label] = r.Values
	}
	return out
}

// Result is the outcome of one Evaluate call. Every section is present;
// there are no partial results.
type Result struct {
	ID              uuid.UUID
	TargetCol       string
	TargetType      string
	SimilarityScore float64
	Sections        []Section
}

// Section looks a section up by name.
func (r *Result) Section(name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Map returns section -> row label -> metric -> value.
func (r *Result) Map() map[string]map[string]map[string]float64 {
	out := make(map[string]map[string]map[string]float64, len(r.Sections))
	for _, s := range r.Sections {
		out[s.Name] = s.Map()
	}
	return out
}

// Renderer presents a result, e.g. as a console report or a notebook table.
// None is shipped with this module.
type Renderer interface {
	Render(ctx context.Context, r *Result) error
}
