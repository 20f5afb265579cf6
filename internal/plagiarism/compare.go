package plagiarism

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrInputTooLarge is returned when a source text exceeds the byte limit.
// The check runs before tokenization.
var ErrInputTooLarge = errors.New("input too large")

// DefaultMaxInputBytes bounds each source text
const DefaultMaxInputBytes = 100000

// Result holds the five metric scores, the weighted overall score and its band
type Result struct {
	TokenSimilarity     float64 `json:"tokenSimilarity" bson:"tokenSimilarity" yaml:"tokenSimilarity"`
	StructureSimilarity float64 `json:"structureSimilarity" bson:"structureSimilarity" yaml:"structureSimilarity"`
	NGramSimilarity     float64 `json:"ngramSimilarity" bson:"ngramSimilarity" yaml:"ngramSimilarity"`
	FrequencySimilarity float64 `json:"frequencySimilarity" bson:"frequencySimilarity" yaml:"frequencySimilarity"`
	EditSimilarity      float64 `json:"editSimilarity" bson:"editSimilarity" yaml:"editSimilarity"`
	Overall             float64 `json:"overall" bson:"overall" yaml:"overall"`
	Level               Level   `json:"level" bson:"level" yaml:"level"`
}

// Comparator runs the tokenize → metrics → aggregate pipeline on a pair of texts
type Comparator struct {
	maxInputBytes int
	maxTokens     int
	language      string
	parallel      bool
	weights       Weights
}

type Option func(*Comparator)

// WithMaxInputBytes sets the per-input byte limit; n <= 0 disables it
func WithMaxInputBytes(n int) Option {
	return func(c *Comparator) {
		c.maxInputBytes = n
	}
}

// WithMaxTokenCount sets the per-input token limit; n <= 0 disables it
func WithMaxTokenCount(n int) Option {
	return func(c *Comparator) {
		c.maxTokens = n
	}
}

// WithLanguage selects the keyword set used by the lexer
func WithLanguage(language string) Option {
	return func(c *Comparator) {
		c.language = language
	}
}

// WithParallel computes the five metrics concurrently
func WithParallel(parallel bool) Option {
	return func(c *Comparator) {
		c.parallel = parallel
	}
}

func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{
		maxInputBytes: DefaultMaxInputBytes,
		maxTokens:     DefaultMaxTokens,
		weights:       DefaultWeights,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForLanguage returns a copy of c that uses the keyword set of language.
// An empty language keeps the current one.
func (c *Comparator) ForLanguage(language string) *Comparator {
	scoped := *c
	if language != "" {
		scoped.language = language
	}
	return &scoped
}

// Compare compares two texts with the default limits and C keywords
func Compare(a, b string) (*Result, error) {
	return NewComparator().Compare(context.Background(), a, b)
}

// Compare tokenizes both texts independently, computes the five metrics and
// aggregates them. Errors are limited to the input and token limits, and to
// ctx cancellation while metrics run in parallel.
func (c *Comparator) Compare(ctx context.Context, a, b string) (*Result, error) {
	if err := c.CheckInputs(a, b); err != nil {
		return nil, err
	}

	lexer := c.newLexer()

	tokensA, err := lexer.Tokenize(a)
	if err != nil {
		return nil, fmt.Errorf("first input: %w", err)
	}
	tokensB, err := lexer.Tokenize(b)
	if err != nil {
		return nil, fmt.Errorf("second input: %w", err)
	}

	var scores Scores
	if c.parallel {
		scores, err = scoreParallel(ctx, tokensA, tokensB)
		if err != nil {
			return nil, err
		}
	} else {
		scores = score(tokensA, tokensB)
	}

	overall := c.weights.Overall(scores)
	return &Result{
		TokenSimilarity:     scores.LCS,
		StructureSimilarity: scores.Structure,
		NGramSimilarity:     scores.NGram,
		FrequencySimilarity: scores.Frequency,
		EditSimilarity:      scores.EditDistance,
		Overall:             overall,
		Level:               Classify(overall),
	}, nil
}

// CheckInputs applies the byte limit to both texts without tokenizing them
func (c *Comparator) CheckInputs(a, b string) error {
	if err := c.checkSize(a); err != nil {
		return fmt.Errorf("first input: %w", err)
	}
	if err := c.checkSize(b); err != nil {
		return fmt.Errorf("second input: %w", err)
	}
	return nil
}

// Tokenize applies the byte and token limits to a single text and returns
// its tokens under the comparator's keyword set
func (c *Comparator) Tokenize(src string) ([]Token, error) {
	if err := c.checkSize(src); err != nil {
		return nil, err
	}
	return c.newLexer().Tokenize(src)
}

// MaxInputBytes is the per-input byte limit, 0 when disabled
func (c *Comparator) MaxInputBytes() int {
	return max(c.maxInputBytes, 0)
}

func (c *Comparator) newLexer() *Lexer {
	return NewLexer(WithKeywords(KeywordsFor(c.language)), WithMaxTokens(c.maxTokens))
}

func (c *Comparator) checkSize(src string) error {
	if c.maxInputBytes > 0 && len(src) > c.maxInputBytes {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrInputTooLarge, len(src), c.maxInputBytes)
	}
	return nil
}

func score(a, b []Token) Scores {
	return Scores{
		LCS:          LCSRatio(a, b),
		Structure:    StructureSimilarity(Structure(a), Structure(b)),
		NGram:        NGramSimilarity(a, b, DefaultNGramSize),
		Frequency:    FrequencySimilarity(a, b),
		EditDistance: EditSimilarity(a, b),
	}
}

// scoreParallel runs one goroutine per metric. Each writes its own field and
// reads only the immutable token sequences.
func scoreParallel(ctx context.Context, a, b []Token) (Scores, error) {
	var scores Scores
	g, ctx := errgroup.WithContext(ctx)

	jobs := []struct {
		dst *float64
		fn  func() float64
	}{
		{&scores.LCS, func() float64 { return LCSRatio(a, b) }},
		{&scores.Structure, func() float64 { return StructureSimilarity(Structure(a), Structure(b)) }},
		{&scores.NGram, func() float64 { return NGramSimilarity(a, b, DefaultNGramSize) }},
		{&scores.Frequency, func() float64 { return FrequencySimilarity(a, b) }},
		{&scores.EditDistance, func() float64 { return EditSimilarity(a, b) }},
	}

	for _, m := range jobs {
		m := m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			*m.dst = m.fn()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Scores{}, fmt.Errorf("metric computation aborted: %w", err)
	}
	return scores, nil
}

// IsLimitError reports whether err comes from the byte or token limit
func IsLimitError(err error) bool {
	return errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrTooManyTokens)
}

// RejectReason labels a limit error for metrics and API responses
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrTooManyTokens):
		return "too_many_tokens"
	case errors.Is(err, ErrInputTooLarge):
		return "input_too_large"
	default:
		return ""
	}
}
