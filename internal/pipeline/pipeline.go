package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/artifact"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/config"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/encode"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/eval"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/feature"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/logging"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/metrics"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/ml"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/split"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/store/raildb"
)

// Run executes one training run: load, split, featurize, train both
// models, evaluate, select, persist. Strictly sequential; any stage error
// aborts the run with no retry and no partial recovery.
func Run(ctx context.Context, cfg config.Config) (artifact.Metadata, error) {
	metrics.TrainingRuns.Inc()
	meta, err := run(ctx, cfg)
	if err != nil {
		metrics.TrainingErrors.Inc()
		logging.Error("training_run_failed", map[string]any{"error": err.Error()})
		return meta, err
	}
	return meta, nil
}

func run(ctx context.Context, cfg config.Config) (artifact.Metadata, error) {
	var meta artifact.Metadata

	start := time.Now()
	db, err := raildb.Open(cfg.Database)
	if err != nil {
		return meta, fmt.Errorf("connect: %w", err)
	}
	departures, err := db.LoadDepartures(ctx)
	closeErr := db.Close()
	if err != nil {
		return meta, fmt.Errorf("load: %w", err)
	}
	if closeErr != nil {
		logging.Warn("db_close_error", map[string]any{"error": closeErr.Error()})
	}
	metrics.ObserveStage("load", start)
	metrics.RowsLoaded.Set(float64(len(departures)))
	logging.Info("load_ok", map[string]any{"rows": len(departures)})

	trainIdx, testIdx, err := split.Indices(len(departures), cfg.Training.TestFraction, cfg.Training.Seed)
	if err != nil {
		return meta, fmt.Errorf("split: %w", err)
	}
	trainDeps := split.Take(departures, trainIdx)
	testDeps := split.Take(departures, testIdx)

	// Route aggregates come from the training subset only, then join into
	// both subsets. Held-out rows on routes never seen in training are
	// dropped rather than extrapolated.
	start = time.Now()
	stats := feature.RouteStatsFrom(trainDeps)
	trainRows, _ := feature.Build(trainDeps, stats)
	testRows, droppedTest := feature.Build(testDeps, stats)
	if droppedTest > 0 {
		logging.Info("test_rows_dropped_unseen_route", map[string]any{"dropped": droppedTest})
	}
	if len(testRows) == 0 {
		return meta, fmt.Errorf("featurize: no held-out rows share a route with the training subset")
	}
	enc := encode.Fit(feature.Routes(trainRows))
	XTrain, yTrain, err := feature.Matrix(trainRows, enc)
	if err != nil {
		return meta, fmt.Errorf("featurize train: %w", err)
	}
	XTest, yTest, err := feature.Matrix(testRows, enc)
	if err != nil {
		return meta, fmt.Errorf("featurize test: %w", err)
	}
	metrics.ObserveStage("featurize", start)
	logging.Info("featurize_ok", map[string]any{"train": len(XTrain), "test": len(XTest), "routes": enc.Len()})

	gbt := &ml.GradientBoosting{
		Trees:        cfg.Training.GBT.Trees,
		MaxDepth:     cfg.Training.GBT.MaxDepth,
		LearningRate: cfg.Training.GBT.LearningRate,
		Seed:         cfg.Training.Seed,
		Workers:      cfg.Training.Workers,
	}
	forest := &ml.RandomForest{
		Trees:    cfg.Training.Forest.Trees,
		MaxDepth: cfg.Training.Forest.MaxDepth,
		Seed:     cfg.Training.Seed,
		Workers:  cfg.Training.Workers,
	}

	// Fixed evaluation order: gradient boosting first, then the forest.
	// Selection ties keep the earlier candidate.
	var candidates []eval.Candidate
	for _, m := range []ml.Regressor{gbt, forest} {
		start = time.Now()
		if err := m.Fit(XTrain, yTrain); err != nil {
			return meta, fmt.Errorf("train %s: %w", m.Type(), err)
		}
		metrics.ObserveStage("train_"+m.Type(), start)
		mm, err := eval.Evaluate(m, XTest, yTest)
		if err != nil {
			return meta, fmt.Errorf("evaluate %s: %w", m.Type(), err)
		}
		logging.Info("model_evaluated", map[string]any{
			"model": m.Type(), "rmse": mm.RMSE, "mae": mm.MAE, "r2": mm.R2,
		})
		candidates = append(candidates, eval.Candidate{Model: m, Metrics: mm})
	}

	best, err := eval.SelectBest(candidates)
	if err != nil {
		return meta, fmt.Errorf("select: %w", err)
	}

	meta = artifact.Metadata{
		RunID:        uuid.NewString(),
		TrainedAt:    time.Now().UTC(),
		ModelType:    best.Model.Type(),
		FeatureNames: feature.Names,
		Metrics:      best.Metrics,
		Seed:         cfg.Training.Seed,
		Rows:         artifact.RowCounts{Total: len(departures), Train: len(trainRows), Test: len(testRows)},
	}
	encArt := artifact.Encoder{Classes: enc.Classes, RouteStats: stats}
	start = time.Now()
	if err := artifact.Save(cfg.Artifacts.Dir, best.Model, encArt, meta); err != nil {
		return meta, fmt.Errorf("persist: %w", err)
	}
	metrics.ObserveStage("persist", start)
	logging.Info("artifacts_saved", map[string]any{
		"dir": cfg.Artifacts.Dir, "model": meta.ModelType, "run_id": meta.RunID,
	})
	return meta, nil
}
