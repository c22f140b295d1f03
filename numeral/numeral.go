// Package numeral converts cardinal numbers into Romanian words.
//
// Output is upper case without diacritics, tokens separated by single spaces
// and magnitude groups separated by ", " when a partitive thousands or
// millions phrase is followed by a remainder:
//
//	131001    -> O SUTA TREIZECI SI UNU DE MII, UNU
//	123456789 -> O SUTA DOUAZECI SI TREI DE MILIOANE, PATRU SUTE CINCIZECI SI SASE DE MII, SAPTE SUTE OPTZECI SI NOUA
//
// The conversion is a pure function over [0, MaxAmount] and is safe for
// concurrent use.
package numeral

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxAmount is the largest amount that can be spelled out.
const MaxAmount = 999_999_999

var (
	// ErrUnsupportedMagnitude is returned for amounts above MaxAmount.
	ErrUnsupportedMagnitude = errors.New("unsupported magnitude")

	// ErrInvalidAmount is returned for negative, empty or non-numeric input.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Tier is a magnitude band, each with its own word-building rule.
type Tier int

const (
	TierUnits Tier = iota
	TierTens
	TierHundreds
	TierThousands
	TierMillions
)

// thresholds[t] is the exclusive upper bound of tier t.
var thresholds = [...]int64{
	TierUnits:     10,
	TierTens:      100,
	TierHundreds:  1_000,
	TierThousands: 1_000_000,
	TierMillions:  1_000_000_000,
}

var tierNames = [...]string{
	TierUnits:     "units",
	TierTens:      "tens",
	TierHundreds:  "hundreds",
	TierThousands: "thousands",
	TierMillions:  "millions",
}

func (t Tier) String() string {
	if t < TierUnits || t > TierMillions {
		return "Tier(" + strconv.Itoa(int(t)) + ")"
	}
	return tierNames[t]
}

// TierFor returns the smallest tier whose threshold is strictly greater than
// n. It reports false when n is negative or no tier covers it.
func TierFor(n int64) (Tier, bool) {
	if n < 0 {
		return 0, false
	}
	for t, limit := range thresholds {
		if n < limit {
			return Tier(t), true
		}
	}
	return 0, false
}

// digit tables, index 0 is the digit zero
var (
	// standalone forms, "UN" as in "UN MILION"
	standalone = [10]string{"ZERO", "UN", "DOI", "TREI", "PATRU", "CINCI", "SASE", "SAPTE", "OPT", "NOUA"}

	// forms used after SI or after a higher group; zero renders as nothing
	compound = [10]string{"", "UNU", "DOI", "TREI", "PATRU", "CINCI", "SASE", "SAPTE", "OPT", "NOUA"}

	// prefixes for 11-19, suffixed with "SPREZECE"
	teenPrefix = [10]string{"", "UN", "DOI", "TREI", "PATRU", "CINCI", "SAI", "SAPTE", "OPT", "NOUA"}

	// prefixes for 20-90, suffixed with "ZECI"
	tensPrefix = [10]string{"", "", "DOUA", "TREI", "PATRU", "CINCI", "SAI", "SAPTE", "OPT", "NOUA"}

	// multipliers in front of the plural SUTE, MII and MILIOANE
	multiplier = [10]string{"", "", "DOUA", "TREI", "PATRU", "CINCI", "SASE", "SAPTE", "OPT", "NOUA"}
)

// ToWords spells out amount.
func ToWords(amount int64) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("%w: %d is negative", ErrInvalidAmount, amount)
	}
	return convert(amount, false)
}

// ToWordsString spells out a decimal digit string. Leading zeros and
// surrounding white space are ignored, so "01" reads as 1.
func ToWordsString(amount string) (string, error) {
	n, err := parseAmount(amount)
	if err != nil {
		return "", err
	}
	return convert(n, false)
}

// MustToWords is like ToWords but panics if amount cannot be converted.
func MustToWords(amount int64) string {
	words, err := ToWords(amount)
	if err != nil {
		panic(err)
	}
	return words
}

func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidAmount, s)
		}
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		return 0, nil
	}
	if len(digits) > len(strconv.Itoa(MaxAmount)) {
		return 0, fmt.Errorf("%w: %s exceeds %d", ErrUnsupportedMagnitude, digits, MaxAmount)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return n, nil
}

// convert dispatches n to the handler of its tier. isCompound selects the
// compound unit forms and only matters in the units tier.
func convert(n int64, isCompound bool) (string, error) {
	tier, ok := TierFor(n)
	if !ok {
		return "", fmt.Errorf("%w: %d exceeds %d", ErrUnsupportedMagnitude, n, MaxAmount)
	}

	switch tier {
	case TierUnits:
		return units(n, isCompound), nil
	case TierTens:
		return tens(n), nil
	case TierHundreds:
		return hundreds(n), nil
	case TierThousands:
		return thousands(n), nil
	default:
		return millions(n), nil
	}
}

// spell is convert for sub-amounts that are in range by construction.
func spell(n int64, isCompound bool) string {
	words, err := convert(n, isCompound)
	if err != nil {
		panic(fmt.Sprintf("numeral: sub-amount %d out of range", n))
	}
	return words
}

func units(n int64, isCompound bool) string {
	if isCompound {
		return compound[n]
	}
	return standalone[n]
}

func tens(n int64) string {
	switch {
	case n == 10:
		return "ZECE"
	case n < 20:
		return teenPrefix[n-10] + "SPREZECE"
	}

	words := tensPrefix[n/10] + "ZECI"
	if n%10 != 0 {
		words += " SI " + spell(n%10, true)
	}
	return words
}

func hundreds(n int64) string {
	var words string
	if n < 200 {
		words = "O SUTA"
	} else {
		words = multiplier[n/100] + " SUTE"
	}
	return appendRest(words, " ", n%100)
}

func thousands(n int64) string {
	if n < 10_000 {
		var words string
		if n < 2_000 {
			words = "O MIE"
		} else {
			words = multiplier[n/1_000] + " MII"
		}
		return appendRest(words, " ", n%1_000)
	}

	words := spell(n/1_000, false) + partitive(n, "MII")
	return appendRest(words, ", ", n%1_000)
}

func millions(n int64) string {
	if n < 10_000_000 {
		var words string
		if n < 2_000_000 {
			words = "UN MILION"
		} else {
			words = multiplier[n/1_000_000] + " MILIOANE"
		}
		return appendRest(words, " ", n%1_000_000)
	}

	words := spell(n/1_000_000, false) + partitive(n, "MILIOANE")
	return appendRest(words, ", ", n%1_000_000)
}

// partitive returns the connector between a multi-digit multiplier and its
// plural noun. The bare plural is used only when 1 < n mod 100000 < 20000,
// at both the thousands and the millions boundary.
func partitive(n int64, plural string) string {
	if r := n % 100_000; 1 < r && r < 20_000 {
		return " " + plural
	}
	return " DE " + plural
}

// appendRest appends the compound rendering of rest, if it renders to
// anything, after sep.
func appendRest(words, sep string, rest int64) string {
	if rest == 0 {
		return words
	}
	if r := spell(rest, true); r != "" {
		return words + sep + r
	}
	return words
}
