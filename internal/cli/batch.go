package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/input"
	"github.com/ppiankov/continuity/internal/model"
	"github.com/ppiankov/continuity/internal/pipeline"
)

var (
	batchNovelsDir string
	batchOutput    string
	batchModelFile string
	batchTimeout   time.Duration
	itemTimeout    time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dataset.csv>",
	Short: "Check a CSV of backstories and write a verdicts CSV",
	Long: `Batch processes a dataset of backstories:
- Read backstories from a CSV with columns id, book_name, content
- Build each novel's evidence index once and reuse it across backstories
- Run the full pipeline per backstory
- Write verdicts as CSV with columns id, label

Novels are loaded from the novels directory as <book_name>.txt or
<book_name>.html. A backstory whose novel cannot be indexed is written
with an ERROR label; the run continues.

Example:
  continuity batch test.csv --novels-dir ./novels
  continuity batch test.csv --novels-dir ./novels --output verdicts.csv
  continuity batch test.csv --novels-dir ./novels --model-file model.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchNovelsDir, "novels-dir", ".", "directory with novel files named <book_name>.txt or .html")
	batchCmd.Flags().StringVar(&batchOutput, "output", "verdicts.csv", "output CSV path")
	batchCmd.Flags().StringVar(&batchModelFile, "model-file", "", "trained decision model (default: built-in threshold model)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 2*time.Hour, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&itemTimeout, "item-timeout", 10*time.Minute, "timeout for one backstory")
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	decision, err := loadDecisionModel(batchModelFile)
	if err != nil {
		return err
	}

	checker, err := newChecker(cfg, decision, logger)
	if err != nil {
		return err
	}

	f, err := os.Open(datasetPath)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	backstories, err := input.ReadUnlabeled(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	records := make([]input.VerdictRecord, 0, len(backstories))
	indexed := make(map[string]error) // book name -> build outcome

	for _, bs := range backstories {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch cancelled: %w", err)
		}

		if buildErr, ok := indexed[bs.BookName]; !ok {
			buildErr = indexNovel(ctx, checker, batchNovelsDir, bs.BookName)
			indexed[bs.BookName] = buildErr
			if buildErr != nil {
				logger.Error("novel index build failed",
					zap.String("book", bs.BookName),
					zap.Error(buildErr),
				)
			}
		}
		if buildErr := indexed[bs.BookName]; buildErr != nil {
			records = append(records, input.VerdictRecord{BackstoryID: bs.ID, Err: buildErr})
			continue
		}

		records = append(records, checkOne(ctx, checker, bs, logger))
	}

	out, err := os.Create(batchOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := input.WriteVerdicts(out, records); err != nil {
		return fmt.Errorf("write verdicts: %w", err)
	}

	succeeded := 0
	for _, rec := range records {
		if rec.Err == nil {
			succeeded++
		}
	}
	fmt.Fprintf(os.Stderr, "✓ %d/%d backstories decided, verdicts written to %s\n",
		succeeded, len(records), batchOutput)
	return nil
}

// indexNovel locates the novel file for a book and builds its index.
func indexNovel(ctx context.Context, checker *pipeline.Checker, dir, bookName string) error {
	path, err := findNovelFile(dir, bookName)
	if err != nil {
		return err
	}
	_, text, err := input.LoadNovel(path, bookName)
	if err != nil {
		return err
	}
	return checker.BuildNovelIndex(ctx, bookName, text)
}

func findNovelFile(dir, bookName string) (string, error) {
	for _, ext := range []string{".txt", ".html", ".htm"} {
		path := filepath.Join(dir, bookName+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &model.DataError{
		Item:   bookName,
		Reason: fmt.Sprintf("no novel file in %s", dir),
	}
}

// checkOne runs one backstory with its own timeout. Failures become error
// records so the output stays aligned with the input.
func checkOne(ctx context.Context, checker *pipeline.Checker, bs model.Backstory, logger *zap.Logger) input.VerdictRecord {
	itemCtx, cancel := context.WithTimeout(ctx, itemTimeout)
	defer cancel()

	result, err := checker.CheckBackstory(itemCtx, bs)
	if err != nil {
		logger.Error("backstory check failed",
			zap.String("backstory_id", bs.ID),
			zap.Error(err),
		)
		return input.VerdictRecord{BackstoryID: bs.ID, Err: err}
	}
	return input.VerdictRecord{BackstoryID: bs.ID, Label: result.Verdict.Label}
}
