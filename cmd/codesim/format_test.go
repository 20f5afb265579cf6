package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *Report {
	return &Report{
		FileA: "a.c",
		FileB: "b.c",
		Result: &plagiarism.Result{
			TokenSimilarity:     0.9,
			StructureSimilarity: 0.8,
			NGramSimilarity:     0.7,
			FrequencySimilarity: 0.6,
			EditSimilarity:      0.5,
			Overall:             0.75,
			Level:               plagiarism.LevelModerate,
		},
	}
}

func TestFormatReportText(t *testing.T) {
	out, err := FormatReport(sampleReport(), FormatText)
	require.NoError(t, err)

	assert.Contains(t, out, "Token Sequence Similarity (LCS):")
	assert.Contains(t, out, "90.00%")
	assert.Contains(t, out, "75.00%")
	assert.Contains(t, out, plagiarism.LevelModerate.Verdict())
}

func TestFormatReportJSON(t *testing.T) {
	out, err := FormatReport(sampleReport(), FormatJSON)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, plagiarism.LevelModerate, decoded.Result.Level)
	assert.Equal(t, plagiarism.LevelModerate.Verdict(), decoded.Verdict)
}

func TestFormatReportYAML(t *testing.T) {
	out, err := FormatReport(sampleReport(), FormatYAML)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "a.c", decoded["fileA"])
}

func TestFormatReportUnknown(t *testing.T) {
	_, err := FormatReport(sampleReport(), OutputFormat("xml"))
	assert.Error(t, err)
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.c")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 20)), 0o600))

	src, err := readSource(path, 20)
	require.NoError(t, err)
	assert.Len(t, src, 20)

	_, err = readSource(path, 19)
	assert.ErrorIs(t, err, plagiarism.ErrInputTooLarge)

	_, err = readSource(filepath.Join(dir, "missing.c"), 10)
	assert.Error(t, err)
}

func TestParseFailOn(t *testing.T) {
	rank, err := parseFailOn("")
	require.NoError(t, err)
	assert.Zero(t, rank)

	rank, err = parseFailOn("moderate")
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	_, err = parseFailOn("minimal")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": FormatText, "text": FormatText, "json": FormatJSON, "yaml": FormatYAML} {
		got, err := parseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseFormat("xml")
	assert.Error(t, err)
}

func TestRunCompareRejectsFormatBeforeReading(t *testing.T) {
	old := compareFormat
	compareFormat = "xml"
	t.Cleanup(func() { compareFormat = old })

	dir := t.TempDir()
	err := runCompare(compareCmd, []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
	assert.NotContains(t, err.Error(), "cannot open")
}
