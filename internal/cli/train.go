package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/classify"
	"github.com/ppiankov/continuity/internal/input"
	"github.com/ppiankov/continuity/internal/model"
)

var (
	trainNovelsDir string
	trainOutput    string
	trainTimeout   time.Duration
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train <dataset.csv>",
	Short: "Train the decision model on a labeled dataset",
	Long: `Train fits the logistic decision model on labeled backstories:
- Read examples from a CSV with columns id, book_name, content, label
- Run each backstory through the pipeline up to its feature vector
- Fit the model and save it as JSON

Labels are CONSISTENT or INCONSISTENT. The trained model is loaded by
check and batch via --model-file.

Example:
  continuity train train.csv --novels-dir ./novels
  continuity train train.csv --novels-dir ./novels --output model.json`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainNovelsDir, "novels-dir", ".", "directory with novel files named <book_name>.txt or .html")
	trainCmd.Flags().StringVar(&trainOutput, "output", "model.json", "output path for the trained model")
	trainCmd.Flags().DurationVar(&trainTimeout, "timeout", 4*time.Hour, "total timeout for training")
}

func runTrain(cmd *cobra.Command, args []string) error {
	datasetPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Feature extraction only, no decision model yet.
	checker, err := newChecker(cfg, nil, logger)
	if err != nil {
		return err
	}

	f, err := os.Open(datasetPath)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	examples, err := input.ReadLabeled(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	if len(examples) == 0 {
		return &model.DataError{Item: datasetPath, Reason: "dataset is empty"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), trainTimeout)
	defer cancel()

	var vectors []model.FeatureVector
	var labels []model.VerdictLabel
	indexed := make(map[string]error)

	for _, ex := range examples {
		bs := ex.Backstory
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("training cancelled: %w", err)
		}

		if buildErr, ok := indexed[bs.BookName]; !ok {
			buildErr = indexNovel(ctx, checker, trainNovelsDir, bs.BookName)
			indexed[bs.BookName] = buildErr
		}
		if buildErr := indexed[bs.BookName]; buildErr != nil {
			return fmt.Errorf("novel %s: %w", bs.BookName, buildErr)
		}

		result, err := checker.Analyze(ctx, bs)
		if err != nil {
			return fmt.Errorf("backstory %s: %w", bs.ID, err)
		}

		vectors = append(vectors, result.Features)
		labels = append(labels, ex.Label)
		logger.Debug("extracted features",
			zap.String("backstory_id", bs.ID),
			zap.String("label", string(ex.Label)),
			zap.Float64("max_contradiction", result.Features.MaxContradiction),
		)
	}

	m := classify.New()
	if err := m.Fit(vectors, labels); err != nil {
		return fmt.Errorf("fit model: %w", err)
	}

	blob, err := m.Save()
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := os.WriteFile(trainOutput, blob, 0o644); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Trained on %d examples, model written to %s\n",
		len(examples), trainOutput)
	return nil
}
