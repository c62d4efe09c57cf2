// Package sparse provides a deterministic lexical term-weighting
// encoder. The same encoder must be used at index and query time;
// changing the scheme without a full reindex silently degrades recall,
// so the scheme is versioned and the version is persisted with the
// collection.
package sparse

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Version identifies the tokenisation and weighting scheme. Bump this
// whenever the scheme changes; a version mismatch between an existing
// collection and the running binary requires a rebuild.
const Version = "tf-v1"

// Encoder produces sparse term-weight vectors using log-scaled term
// frequency. Tokenisation is lowercase alphanumeric splitting with no
// randomised behaviour: identical text always yields identical output.
type Encoder struct{}

// NewEncoder creates a sparse encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode returns the term-weight vector for text. Term ids are FNV-1a
// 32-bit hashes of the tokens. The result may be empty but never
// contains zero-weight terms.
func (e *Encoder) Encode(text string) map[uint32]float32 {
	counts := make(map[uint32]int)
	for _, token := range tokenise(text) {
		counts[termID(token)]++
	}

	weights := make(map[uint32]float32, len(counts))
	for id, n := range counts {
		// 1 + ln(tf): strictly positive for tf >= 1.
		weights[id] = float32(1 + math.Log(float64(n)))
	}
	return weights
}

// Version returns the scheme version string.
func (e *Encoder) Version() string {
	return Version
}

// tokenise splits text into lowercase alphanumeric runs.
func tokenise(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// termID hashes a token to a 32-bit term id.
func termID(token string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(token))
	return h.Sum32()
}
