package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/continuity/internal/input"
	"github.com/ppiankov/continuity/internal/model"
	"github.com/ppiankov/continuity/internal/pipeline"
)

var (
	checkBook      string
	checkModelFile string
	checkTimeout   time.Duration
	checkJSON      bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <novel-file> <backstory-file>",
	Short: "Check one backstory against one novel",
	Long: `Check runs the full consistency pipeline for a single backstory:
- Segment the novel into overlapping evidence units and index them
- Decompose the backstory into atomic claims
- Retrieve the most relevant evidence for each claim
- Judge every claim-evidence pair (CONTRADICT / SUPPORT / NEUTRAL)
- Aggregate conservatively and emit a CONSISTENT / INCONSISTENT verdict

Example:
  continuity check dracula.txt backstory.txt
  continuity check dracula.txt backstory.txt --book dracula --json
  continuity check dracula.txt backstory.txt --model-file model.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkBook, "book", "", "book name (default: novel file name)")
	checkCmd.Flags().StringVar(&checkModelFile, "model-file", "", "trained decision model (default: built-in threshold model)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the full result as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	novelPath, backstoryPath := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	decision, err := loadDecisionModel(checkModelFile)
	if err != nil {
		return err
	}

	checker, err := newChecker(cfg, decision, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	bookName, novelText, err := input.LoadNovel(novelPath, checkBook)
	if err != nil {
		return err
	}
	backstory, err := input.LoadBackstory(backstoryPath, bookName)
	if err != nil {
		return err
	}

	if err := checker.BuildNovelIndex(ctx, bookName, novelText); err != nil {
		return err
	}

	result, err := checker.CheckBackstory(ctx, backstory)
	if err != nil {
		return err
	}

	if checkJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func printResult(result *pipeline.CheckResult) {
	fmt.Printf("Backstory:          %s\n", result.BackstoryID)
	fmt.Printf("Book:               %s\n", result.BookName)
	fmt.Printf("Claims:             %d\n", len(result.Claims))
	fmt.Printf("Judgments:          %d\n", len(result.Judgments))
	fmt.Printf("Max contradiction:  %.3f\n", result.Features.MaxContradiction)
	fmt.Printf("Mean contradiction: %.3f\n", result.Features.MeanContradiction)
	fmt.Printf("Strong count:       %.0f\n", result.Features.StrongContradictions)
	fmt.Printf("Mean support:       %.3f\n", result.Features.MeanSupport)
	fmt.Printf("\nVerdict: %s\n", result.Verdict.Label)

	if result.Verdict.Label == model.VerdictInconsistent {
		printContradictions(result)
	}
}

// printContradictions lists the evidence behind the verdict.
func printContradictions(result *pipeline.CheckResult) {
	claims := make(map[string]string, len(result.Claims))
	for _, c := range result.Claims {
		claims[c.ID] = c.Text
	}

	fmt.Println("\nContradicting evidence:")
	for _, j := range result.Judgments {
		if j.Label != model.RelationContradict {
			continue
		}
		fmt.Printf("  - claim %q contradicted by unit %s (confidence %.2f)\n",
			claims[j.ClaimID], j.EvidenceUnitID, j.Confidence)
	}
}
