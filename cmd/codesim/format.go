package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how a report is printed
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// Report is the printable outcome of one comparison
type Report struct {
	FileA   string             `json:"fileA" yaml:"fileA"`
	FileB   string             `json:"fileB" yaml:"fileB"`
	Result  *plagiarism.Result `json:"result" yaml:"result"`
	Verdict string             `json:"verdict" yaml:"verdict"`
}

// Theme holds the styles of the text report
type Theme struct {
	Title    lipgloss.Style
	Rule     lipgloss.Style
	Label    lipgloss.Style
	Score    lipgloss.Style
	Overall  lipgloss.Style
	Verdicts map[plagiarism.Level]lipgloss.Style
}

var DefaultTheme = Theme{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	Rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Label:   lipgloss.NewStyle().Width(36),
	Score:   lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	Overall: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Verdicts: map[plagiarism.Level]lipgloss.Style{
		plagiarism.LevelHigh:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		plagiarism.LevelModerate: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		plagiarism.LevelLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		plagiarism.LevelMinimal:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
	},
}

const ruleWidth = 60

// parseFormat validates a --format value. Empty means text.
func parseFormat(s string) (OutputFormat, error) {
	switch format := OutputFormat(s); format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q: want text, json or yaml", s)
	}
}

// FormatReport renders r in the requested format
func FormatReport(r *Report, format OutputFormat) (string, error) {
	if r.Verdict == "" && r.Result != nil {
		r.Verdict = r.Result.Level.Verdict()
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode json: %w", err)
		}
		return string(data) + "\n", nil
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to encode yaml: %w", err)
		}
		return string(data), nil
	case FormatText, "":
		return formatText(r, DefaultTheme), nil
	default:
		return "", fmt.Errorf("unknown format %q: want text, json or yaml", format)
	}
}

func formatText(r *Report, theme Theme) string {
	var b strings.Builder
	rule := theme.Rule.Render(strings.Repeat("=", ruleWidth))

	b.WriteString(rule + "\n")
	b.WriteString(theme.Title.Render("Similarity Report") + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%s%s\n", theme.Label.Render("File A:"), r.FileA)
	fmt.Fprintf(&b, "%s%s\n\n", theme.Label.Render("File B:"), r.FileB)

	rows := []struct {
		label string
		value float64
	}{
		{"Token Sequence Similarity (LCS):", r.Result.TokenSimilarity},
		{"Structural Similarity:", r.Result.StructureSimilarity},
		{"N-gram Similarity (3-gram):", r.Result.NGramSimilarity},
		{"Token Frequency Similarity:", r.Result.FrequencySimilarity},
		{"Edit Distance Similarity:", r.Result.EditSimilarity},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s%s\n", theme.Label.Render(row.label), theme.Score.Render(percent(row.value)))
	}

	b.WriteString(theme.Rule.Render(strings.Repeat("-", ruleWidth)) + "\n")
	fmt.Fprintf(&b, "%s%s\n\n", theme.Label.Render("Overall Similarity Score:"), theme.Overall.Render(percent(r.Result.Overall)))

	verdict := theme.Verdicts[r.Result.Level]
	b.WriteString(verdict.Render(r.Verdict) + "\n")
	b.WriteString(rule + "\n")
	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
