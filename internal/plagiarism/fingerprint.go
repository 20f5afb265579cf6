package plagiarism

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/RishiKendai/codesim/internal/models"
)

// fingerprintSize is the hex length kept from each digest
const fingerprintSize = 16

// Fingerprints hashes the distinct token n-grams of a sequence. They are
// stored with a submission and only used to pick which pairs are worth a
// full comparison; the tokens themselves are not kept.
func Fingerprints(tokens []Token) []string {
	set := ngramSet(tokens, DefaultNGramSize)

	hashes := make([]string, 0, len(set))
	for gram := range set {
		hashes = append(hashes, computeHash(gram))
	}
	sort.Strings(hashes)
	return hashes
}

// FingerprintOverlap calculates shared / min(total_A, total_B)
func FingerprintOverlap(submissionA, submissionB *models.Submission) float64 {
	if len(submissionA.Fingerprints) == 0 || len(submissionB.Fingerprints) == 0 {
		return 0.0
	}

	hashesA := make(map[string]struct{}, len(submissionA.Fingerprints))
	for _, hash := range submissionA.Fingerprints {
		hashesA[hash] = struct{}{}
	}

	hashesB := make(map[string]struct{}, len(submissionB.Fingerprints))
	for _, hash := range submissionB.Fingerprints {
		hashesB[hash] = struct{}{}
	}

	shared := 0
	for hash := range hashesA {
		if _, ok := hashesB[hash]; ok {
			shared++
		}
	}

	return float64(shared) / float64(min(len(hashesA), len(hashesB)))
}

func computeHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:fingerprintSize]
}
