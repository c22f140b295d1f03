package currency

import "strings"

// Code is an ISO 4217 currency code.
type Code string

// ISO 4217 codes for the currencies published by BNR.
const (
	AED Code = "AED"
	AUD Code = "AUD"
	BGN Code = "BGN"
	BRL Code = "BRL"
	CAD Code = "CAD"
	CHF Code = "CHF"
	CNY Code = "CNY"
	CZK Code = "CZK"
	DKK Code = "DKK"
	EGP Code = "EGP"
	EUR Code = "EUR"
	GBP Code = "GBP"
	HUF Code = "HUF"
	INR Code = "INR"
	JPY Code = "JPY"
	KRW Code = "KRW"
	MDL Code = "MDL"
	MXN Code = "MXN"
	NOK Code = "NOK"
	NZD Code = "NZD"
	PLN Code = "PLN"
	RON Code = "RON"
	RSD Code = "RSD"
	RUB Code = "RUB"
	SEK Code = "SEK"
	TRY Code = "TRY"
	UAH Code = "UAH"
	USD Code = "USD"
	XAU Code = "XAU"
	XDR Code = "XDR"
	ZAR Code = "ZAR"
)

var published = map[Code]bool{
	AED: true, AUD: true, BGN: true, BRL: true, CAD: true, CHF: true, CNY: true,
	CZK: true, DKK: true, EGP: true, EUR: true, GBP: true, HUF: true, INR: true,
	JPY: true, KRW: true, MDL: true, MXN: true, NOK: true, NZD: true, PLN: true,
	RON: true, RSD: true, RUB: true, SEK: true, TRY: true, UAH: true, USD: true,
	XAU: true, XDR: true, ZAR: true,
}

// Normalize returns c trimmed and upper-cased.
func (c Code) Normalize() Code {
	return Code(strings.ToUpper(strings.TrimSpace(string(c))))
}

// Valid reports whether c is one of the codes BNR publishes. The check is
// case-insensitive.
func (c Code) Valid() bool {
	return published[c.Normalize()]
}

func (c Code) String() string {
	return string(c)
}
