// Package keys provides BIP39 mnemonic handling and deterministic
// Ethereum key derivation for the wallet core.
package keys

import (
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// MnemonicEntropyBits is the entropy size for generated mnemonics.
// 128 bits corresponds to a 12-word phrase.
const MnemonicEntropyBits = 128

// whitespaceRegex matches one or more whitespace characters.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// validWordCounts are the BIP39 phrase lengths accepted on import.
//
//nolint:gochecknoglobals // Fixed BIP39 constant table
var validWordCounts = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}

// GenerateMnemonic creates a fresh 12-word BIP39 mnemonic from a
// cryptographically secure random source.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", kerrors.Wrap(err, "generating entropy")
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", kerrors.Wrap(err, "encoding mnemonic")
	}

	return mnemonic, nil
}

// NormalizeMnemonic cleans mnemonic input: lowercase, trimmed, and
// single-space-separated. Validation and derivation always operate on
// the normalized form, so cosmetic whitespace differences never change
// the derived keys.
func NormalizeMnemonic(input string) string {
	input = strings.ToLower(input)
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// ValidateMnemonic checks a phrase against BIP39: word count in
// {12,15,18,21,24}, all words in the word list, and a valid checksum.
func ValidateMnemonic(mnemonic string) error {
	normalized := NormalizeMnemonic(mnemonic)
	if normalized == "" {
		return kerrors.ErrInvalidMnemonic
	}

	// Fast word count check before the expensive checksum validation.
	if !validWordCounts[len(strings.Fields(normalized))] {
		return kerrors.ErrInvalidMnemonic
	}

	// MnemonicToByteArray validates word validity and the checksum.
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		if suggestions := FormatTypoSuggestions(DetectTypos(normalized)); suggestions != "" {
			return kerrors.WithSuggestion(kerrors.ErrInvalidMnemonic, suggestions)
		}
		return kerrors.ErrInvalidMnemonic
	}

	return nil
}

// IsValidWord checks if a word is in the BIP39 English word list.
func IsValidWord(word string) bool {
	word = strings.ToLower(word)
	for _, w := range bip39.GetWordList() {
		if w == word {
			return true
		}
	}
	return false
}

// MaxTypoDistance is the maximum Levenshtein distance to consider a
// suggestion. Words further away are too different to suggest.
const MaxTypoDistance = 2

// TypoInfo describes a detected typo and its closest word-list match.
type TypoInfo struct {
	// Index is the word position in the mnemonic (0-based).
	Index int
	// Word is the original (possibly misspelled) word.
	Word string
	// Suggestion is the closest BIP39 word, or empty if none found.
	Suggestion string
	// Distance is the Levenshtein distance to the suggestion.
	Distance int
}

// SuggestWord finds the closest BIP39 word to the input.
// Returns empty string if no word is within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string

	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
		if dist == 0 {
			return word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos scans a phrase for words outside the BIP39 word list and
// suggests corrections.
func DetectTypos(mnemonic string) []TypoInfo {
	if mnemonic == "" {
		return nil
	}

	words := strings.Fields(NormalizeMnemonic(mnemonic))
	var typos []TypoInfo

	for i, word := range words {
		if IsValidWord(word) {
			continue
		}
		suggestion := SuggestWord(word)
		distance := 0
		if suggestion != "" {
			distance = levenshtein.ComputeDistance(word, suggestion)
		}
		typos = append(typos, TypoInfo{
			Index:      i,
			Word:       word,
			Suggestion: suggestion,
			Distance:   distance,
		})
	}

	return typos
}

// FormatTypoSuggestions formats typo information into a human-readable
// suggestion string. The misspelled words themselves are user input, not
// secret material; valid words of the phrase are never echoed.
func FormatTypoSuggestions(typos []TypoInfo) string {
	if len(typos) == 0 {
		return ""
	}

	var b strings.Builder
	for i, typo := range typos {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString("word ")
		b.WriteString(itoa(typo.Index + 1))
		if typo.Suggestion != "" {
			b.WriteString(" - did you mean '")
			b.WriteString(typo.Suggestion)
			b.WriteString("'?")
		} else {
			b.WriteString(" is not a valid BIP39 word")
		}
	}
	return b.String()
}

// itoa converts a non-negative int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
