// Package shapeml classifies 2-D shapes from their contours.
//
// A contour is an ordered, closed sequence of integer pixel coordinates.
// Package shape turns it into a Freeman chain code and a fixed 12-component
// descriptor (normalized direction histogram, circularity, convexity,
// aspect ratio and extent). Two classifiers learn from labeled descriptors:
//
//   - neighbors.KNN: distance-weighted k-nearest-neighbour voting over the
//     Minkowski distance of order d
//   - linear.LogisticRegression: a binary logistic model trained online by
//     stochastic gradient descent with L2 shrinkage, plus linear.OneVsRest
//     for more than two labels
//
// Both models persist as self-describing JSON documents and report
// failures as the typed errors of pkg/errors.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/shapeml/neighbors"
//	    "github.com/YuminosukeSato/shapeml/shape"
//	)
//
//	func main() {
//	    square := shape.Contour{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
//	    f, err := shape.NewFeatures(square)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    knn, err := neighbors.NewKNN(1, 2)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := knn.Learn([]shape.LabeledInstance{{Label: "square", Features: f}}); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    label, err := knn.PredictFeatures(f)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(label) // square
//	}
//
// # Logging
//
// Models log through pkg/log. Call log.SetupLogger("debug") to get JSON
// records from zerolog, including per-epoch accuracy and loss while
// training logistic models.
//
// # Packages
//
//   - shape: contours, chain codes, geometry and descriptors
//   - neighbors: k-nearest-neighbour classifier
//   - linear: logistic regression and one-vs-rest
//   - metrics: accuracy, confusion matrix and log-loss
//   - core/model: shared interfaces, estimator state and JSON persistence
//   - core/parallel: range splitting across goroutines
//   - pkg/errors, pkg/log: typed errors and structured logging
package shapeml
