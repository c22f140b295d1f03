package wscutils

// Response status values
const (
	SuccessStatus = "success"
	ErrorStatus   = "error"
)

// Error codes. Validation failures use the validator tag ("required",
// "numeric", ...) as their errcode; the codes below cover the rest.
const (
	ErrcodeUnknown              = "unknown"
	ErrcodeInvalidJson          = "invalid_json"
	ErrcodeInvalidAmount        = "invalid_amount"
	ErrcodeUnsupportedMagnitude = "unsupported_magnitude"
	ErrcodeInvalidCurrency      = "invalid_currency"
	ErrcodeRateNotFound         = "rate_not_found"
	ErrcodeRatesUnavailable     = "rates_unavailable"
	ErrcodeNotMultipart         = "not_multipart"
)
