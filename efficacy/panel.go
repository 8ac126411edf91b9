package efficacy

import (
	"github.com/YuminosukeSato/synthcheck/core/model"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
	"github.com/YuminosukeSato/synthcheck/sklearn/ensemble"
	"github.com/YuminosukeSato/synthcheck/sklearn/linear_model"
	"github.com/YuminosukeSato/synthcheck/sklearn/neural_network"
	"github.com/YuminosukeSato/synthcheck/sklearn/tree"
)

// TargetType selects the estimator panel and the metrics.
type TargetType string

const (
	Classification TargetType = "class"
	Regression     TargetType = "regr"
)

// ParseTargetType accepts "class" or "regr".
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(s) {
	case Classification, Regression:
		return TargetType(s), nil
	}
	return "", errors.NewInvalidTargetTypeError(s)
}

// Member is one named panel entry. Estimator is a template; it is never fit
// itself, only cloned.
type Member struct {
	Name      string
	Estimator model.Fitter
}

// Panel is the ordered list of estimators trained on both datasets.
type Panel []Member

// DefaultPanel returns the built-in panel for targetType seeded with seed.
func DefaultPanel(targetType TargetType, seed int64) (Panel, error) {
	switch targetType {
	case Classification:
		return Panel{
			{"LogisticRegression", linear_model.NewLogisticRegression(
				linear_model.WithLRMaxIter(500), linear_model.WithLRRandomState(seed))},
			{"RandomForestClassifier", ensemble.NewRandomForestClassifier(
				ensemble.WithNEstimators(10), ensemble.WithRandomState(seed))},
			{"DecisionTreeClassifier", tree.NewDecisionTreeClassifier(tree.WithRandomState(seed))},
			{"MLPClassifier", neural_network.NewMLPClassifier(
				neural_network.WithHiddenLayerSizes(50, 50), neural_network.WithRandomState(seed))},
		}, nil
	case Regression:
		return Panel{
			{"RandomForestRegressor", ensemble.NewRandomForestRegressor(
				ensemble.WithNEstimators(20), ensemble.WithMaxDepth(5), ensemble.WithRandomState(seed))},
			{"Lasso", linear_model.NewLasso()},
			{"Ridge", linear_model.NewRidge(linear_model.WithRidgeAlpha(1))},
			{"ElasticNet", linear_model.NewElasticNet()},
		}, nil
	}
	return nil, errors.NewInvalidTargetTypeError(string(targetType))
}

// capable is what a panel member must offer.
type capable interface {
	model.Estimator
	model.Scorer
	model.Cloner
}

// Validate rejects members missing Predict, Score or Clone before anything
// is trained.
func (p Panel) Validate() error {
	if len(p) == 0 {
		return errors.NewValidationError("panel", "must contain at least one estimator", 0)
	}
	seen := make(map[string]bool, len(p))
	for _, m := range p {
		if seen[m.Name] {
			return errors.NewValidationError("panel", "duplicate estimator name", m.Name)
		}
		seen[m.Name] = true

		var missing []string
		if m.Estimator == nil {
			missing = append(missing, "Fit")
		}
		if _, ok := m.Estimator.(model.Predictor); !ok {
			missing = append(missing, "Predict")
		}
		if _, ok := m.Estimator.(model.Scorer); !ok {
			missing = append(missing, "Score")
		}
		if _, ok := m.Estimator.(model.Cloner); !ok {
			missing = append(missing, "Clone")
		}
		if len(missing) > 0 {
			return errors.NewUnsupportedEstimatorError(m.Name, missing)
		}
	}
	return nil
}

// Params returns the hyperparameters of the members that expose them,
// keyed by member name.
func (p Panel) Params() map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(p))
	for _, m := range p {
		if pg, ok := m.Estimator.(model.ParameterGetter); ok {
			out[m.Name] = pg.GetParams()
		}
	}
	return out
}

func (p Panel) names() []string {
	out := make([]string, len(p))
	for i, m := range p {
		out[i] = m.Name
	}
	return out
}
