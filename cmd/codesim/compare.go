package main

import (
	"fmt"
	"io"
	"os"

	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	compareFormat    string
	compareLanguage  string
	compareParallel  bool
	compareMaxBytes  int
	compareMaxTokens int
	compareFailOn    string
)

var compareCmd = &cobra.Command{
	Use:   "compare <file-a> <file-b>",
	Short: "Compare two source files",
	Long: `Compare two source files and print their similarity report.

Examples:
  codesim compare a.c b.c
  codesim compare --language=java --format=json A.java B.java
  codesim compare --fail-on=moderate old.go new.go`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareFormat, "format", string(FormatText), "Output format (text, json, yaml)")
	compareCmd.Flags().StringVar(&compareLanguage, "language", "c", "Keyword set (c, cpp, java, go, python, javascript)")
	compareCmd.Flags().BoolVar(&compareParallel, "parallel", false, "Compute the metrics concurrently")
	compareCmd.Flags().IntVar(&compareMaxBytes, "max-bytes", plagiarism.DefaultMaxInputBytes, "Per-file byte limit")
	compareCmd.Flags().IntVar(&compareMaxTokens, "max-tokens", plagiarism.DefaultMaxTokens, "Per-file token limit")
	compareCmd.Flags().StringVar(&compareFailOn, "fail-on", "", "Exit with status 2 at or above this level (low, moderate, high)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	failOn, err := parseFailOn(compareFailOn)
	if err != nil {
		return err
	}
	format, err := parseFormat(compareFormat)
	if err != nil {
		return err
	}

	a, err := readSource(args[0], compareMaxBytes)
	if err != nil {
		return err
	}
	b, err := readSource(args[1], compareMaxBytes)
	if err != nil {
		return err
	}

	comparator := plagiarism.NewComparator(
		plagiarism.WithLanguage(compareLanguage),
		plagiarism.WithParallel(compareParallel),
		plagiarism.WithMaxInputBytes(compareMaxBytes),
		plagiarism.WithMaxTokenCount(compareMaxTokens),
	)

	result, err := comparator.Compare(cmd.Context(), a, b)
	if err != nil {
		return err
	}

	log.Debug().
		Str("fileA", args[0]).
		Str("fileB", args[1]).
		Float64("overall", result.Overall).
		Msg("Comparison finished")

	output, err := FormatReport(&Report{FileA: args[0], FileB: args[1], Result: result}, format)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)

	if failOn != 0 && levelRank(result.Level) >= failOn {
		os.Exit(2)
	}
	return nil
}

// readSource reads at most limit bytes of path and fails if the file is longer
func readSource(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, int64(limit)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	if limit > 0 && len(data) > limit {
		return "", fmt.Errorf("%s: %w: limit is %d bytes", path, plagiarism.ErrInputTooLarge, limit)
	}
	return string(data), nil
}

func levelRank(level plagiarism.Level) int {
	switch level {
	case plagiarism.LevelHigh:
		return 3
	case plagiarism.LevelModerate:
		return 2
	case plagiarism.LevelLow:
		return 1
	default:
		return 0
	}
}

func parseFailOn(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	rank := levelRank(plagiarism.Level(s))
	if rank == 0 {
		return 0, fmt.Errorf("invalid --fail-on %q: want low, moderate or high", s)
	}
	return rank, nil
}
