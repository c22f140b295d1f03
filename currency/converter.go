// Package currency converts amounts using the reference rates published by
// the National Bank of Romania (BNR).
//
// The rate document carries one base currency (OrigCurrency, RON in practice)
// and, for each other currency, the amount of base currency paid for
// `multiplier` units of it. Conversions between two non-base currencies go
// through the base currency. Every step is rounded half away from zero to
// four decimal places.
package currency

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Namespace is the XML namespace of the BNR rate document.
const Namespace = "http://www.bnr.ro/xsd"

// Places is the number of decimal places conversions are rounded to.
const Places = 4

var (
	// ErrMalformedDocument is returned when the rate document cannot be parsed.
	ErrMalformedDocument = errors.New("malformed rate document")

	// ErrOriginalCurrency is returned when the document does not have
	// exactly one OrigCurrency element.
	ErrOriginalCurrency = errors.New("none or multiple occurrences of XML element OrigCurrency")
)

// RateNotFoundError is returned when the document has no rate for a code.
type RateNotFoundError struct {
	Code Code
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("couldn't find a currency rate for: %s. Make sure you have supplied a valid ISO 4217 currency code", e.Code)
}

type document struct {
	XMLName xml.Name `xml:"DataSet"`
	Header  struct {
		Publisher      string `xml:"Publisher"`
		PublishingDate string `xml:"PublishingDate"`
	} `xml:"Header"`
	Body struct {
		OrigCurrency []string `xml:"OrigCurrency"`
		Cubes        []cube   `xml:"Cube"`
	} `xml:"Body"`
}

type cube struct {
	Date  string `xml:"date,attr"`
	Rates []rate `xml:"Rate"`
}

type rate struct {
	Currency   string `xml:"currency,attr"`
	Multiplier string `xml:"multiplier,attr"`
	Value      string `xml:",chardata"`
}

// Converter answers conversion queries against one rate document. It is
// immutable after construction and safe for concurrent use.
type Converter struct {
	doc   document
	rates map[Code]decimal.Decimal
}

// NewConverter parses xmlSource. Rates that cannot be parsed make the whole
// document malformed.
func NewConverter(xmlSource []byte) (*Converter, error) {
	var doc document
	if err := xml.NewDecoder(bytes.NewReader(xmlSource)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.XMLName.Space != "" && doc.XMLName.Space != Namespace {
		return nil, fmt.Errorf("%w: unexpected namespace %q", ErrMalformedDocument, doc.XMLName.Space)
	}

	c := &Converter{
		doc:   doc,
		rates: make(map[Code]decimal.Decimal),
	}
	for _, cb := range doc.Body.Cubes {
		for _, r := range cb.Rates {
			code := Code(r.Currency).Normalize()
			// the first cube holding a code wins
			if _, seen := c.rates[code]; seen {
				continue
			}
			value, err := parseRate(r)
			if err != nil {
				return nil, fmt.Errorf("%w: rate for %s: %v", ErrMalformedDocument, code, err)
			}
			c.rates[code] = value
		}
	}
	return c, nil
}

func parseRate(r rate) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(r.Value))
	if err != nil {
		return decimal.Zero, err
	}
	if r.Multiplier == "" {
		return value, nil
	}
	m, err := strconv.Atoi(strings.TrimSpace(r.Multiplier))
	if err != nil {
		return decimal.Zero, fmt.Errorf("multiplier: %w", err)
	}
	if m <= 0 {
		return decimal.Zero, fmt.Errorf("multiplier %d is not positive", m)
	}
	return value.Div(decimal.NewFromInt(int64(m))), nil
}

// OriginalCurrency returns the upper-cased content of the single
// OrigCurrency element.
func (c *Converter) OriginalCurrency() (Code, error) {
	if len(c.doc.Body.OrigCurrency) != 1 {
		return "", ErrOriginalCurrency
	}
	return Code(c.doc.Body.OrigCurrency[0]).Normalize(), nil
}

// IsOriginalCurrency reports whether code is the document's base currency.
func (c *Converter) IsOriginalCurrency(code Code) (bool, error) {
	orig, err := c.OriginalCurrency()
	if err != nil {
		return false, err
	}
	return orig == code.Normalize(), nil
}

// PublishingDate returns the publishing date from the document header as it
// appears there.
func (c *Converter) PublishingDate() string {
	return strings.TrimSpace(c.doc.Header.PublishingDate)
}

// Rate returns the price in base currency of one unit of code.
func (c *Converter) Rate(code Code) (decimal.Decimal, error) {
	code = code.Normalize()
	r, ok := c.rates[code]
	if !ok {
		return decimal.Zero, &RateNotFoundError{Code: code}
	}
	return r, nil
}

// Convert converts amount from one currency to another.
func (c *Converter) Convert(amount decimal.Decimal, from, to Code) (decimal.Decimal, error) {
	from, to = from.Normalize(), to.Normalize()
	if from == to {
		return amount, nil
	}

	toBase, err := c.toOriginal(amount, from)
	if err != nil {
		return decimal.Zero, err
	}

	isBase, err := c.IsOriginalCurrency(to)
	if err != nil {
		return decimal.Zero, err
	}
	if isBase {
		return toBase, nil
	}

	toRate, err := c.Rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	return toBase.Div(toRate).Round(Places), nil
}

// ConvertFloat is Convert for float64 amounts and plain string codes.
func (c *Converter) ConvertFloat(amount float64, from, to string) (float64, error) {
	out, err := c.Convert(decimal.NewFromFloat(amount), Code(from), Code(to))
	if err != nil {
		return 0, err
	}
	f, _ := out.Float64()
	return f, nil
}

func (c *Converter) toOriginal(amount decimal.Decimal, from Code) (decimal.Decimal, error) {
	isBase, err := c.IsOriginalCurrency(from)
	if err != nil {
		return decimal.Zero, err
	}
	if isBase {
		return amount, nil
	}
	r, err := c.Rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Mul(amount).Round(Places), nil
}
