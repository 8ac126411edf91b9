// Package synthcheck measures how well a synthetic ("fake") table reproduces
// the statistical and predictive properties of the real table it was
// generated from.
//
// # Features
//
//   - Alignment: column reordering, equal-size seeded subsampling, column
//     classification and missing-value imputation
//   - Statistical moments: mean, median, std and variance of every numerical
//     column, compared by rank correlation
//   - Association structure: Pearson/Spearman/Kendall for numerical pairs,
//     Theil's U for nominal pairs, compared by correlation or distance
//   - ML efficacy: the same estimator panel trained on both tables, scored
//     on their own and on the other table's test split
//   - Privacy: distance of every fake row to its nearest real row
//   - Copies and duplicates detected by canonical row hashing
//   - Jensen-Shannon and Kolmogorov-Smirnov distances per column
//
// # Quick Start
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/YuminosukeSato/synthcheck/evaluator"
//	)
//
//	func run(real, fake *frame.Frame) error {
//	    ev, err := evaluator.New(real, fake, evaluator.WithCategorical("sex", "smoker"))
//	    if err != nil {
//	        return err
//	    }
//	    res, err := ev.Evaluate(context.Background(), "smoker", "class")
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Printf("similarity: %.3f\n", res.SimilarityScore)
//	    return nil
//	}
//
// # Packages
//
//   - evaluator: TableEvaluator, the entry point, and the result sections
//   - align, moments, association, efficacy, privacy, duplicates: the
//     individual comparisons
//   - frame: the in-memory table model
//   - preprocessing: ordinal and one-hot encoding, StandardScaler
//   - metrics: classification/regression metrics, correlations, distances,
//     Jensen-Shannon and Kolmogorov-Smirnov
//   - sklearn/...: the estimators of the efficacy panels (linear models,
//     CART trees, random forests, MLP) and the K-fold splitter
//   - core/model, core/parallel: estimator interfaces and CPU parallelism
//   - config, pkg/errors, pkg/log, pkg/telemetry: settings, the error
//     taxonomy, structured logging and Prometheus instrumentation
//
// # Determinism
//
// Row subsampling, fold assignment and every estimator draw from seeded PCG
// streams. Repeating an evaluation with the same inputs and seeds gives the
// same numbers regardless of the number of workers.
package synthcheck
