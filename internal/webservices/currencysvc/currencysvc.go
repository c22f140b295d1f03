// Package currencysvc converts amounts with the BNR reference rates.
//
// The rate document comes from the *ratefetch.Fetcher registered under
// service.DepRateFetcher, so every request sees the rates of the current
// publication day without refetching them.
package currencysvc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/remiges-tech/leu/currency"
	"github.com/remiges-tech/leu/metrics"
	"github.com/remiges-tech/leu/ratefetch"
	"github.com/remiges-tech/leu/service"
	"github.com/remiges-tech/leu/wscutils"
)

const metricKind = "currency"

// ConvertRequest is the data of a POST /currency/convert request.
type ConvertRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
	From   string `json:"from" validate:"required,iso4217"`
	To     string `json:"to" validate:"required,iso4217"`
}

// ConvertResponse carries the converted amount with four decimals.
type ConvertResponse struct {
	Amount         string `json:"amount"`
	From           string `json:"from"`
	To             string `json:"to"`
	Result         string `json:"result"`
	PublishingDate string `json:"publishing_date"`
}

// RateResponse is the price of one unit of Code in Base.
type RateResponse struct {
	Code           string `json:"code"`
	Base           string `json:"base"`
	Rate           string `json:"rate"`
	PublishingDate string `json:"publishing_date"`
}

func RegisterRoutes(s *service.Service) {
	g := s.CreateGroup("/currency")
	g.RegisterRoute(http.MethodPost, "/convert", HandleConvert)
	g.CreateSubGroup("/rates").RegisterRoute(http.MethodGet, "/:code", HandleGetRate)
}

// HandleConvert handles POST /currency/convert.
func HandleConvert(c *gin.Context, s *service.Service) {
	start := time.Now()
	m, _ := service.Dependency[metrics.Metrics](s, service.DepMetrics)
	lh := s.Logger.WithModule("currencysvc").WithOp("convert")

	var req ConvertRequest
	if err := wscutils.BindJSON(c, &req); err != nil {
		return
	}
	req.From = strings.ToUpper(strings.TrimSpace(req.From))
	req.To = strings.ToUpper(strings.TrimSpace(req.To))

	if validationErrors := validate(req); len(validationErrors) > 0 {
		metrics.ObserveConversion(m, metricKind, "invalid", start)
		wscutils.SendErrorResponse(c, wscutils.NewResponse(wscutils.ErrorStatus, nil, validationErrors))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		metrics.ObserveConversion(m, metricKind, wscutils.ErrcodeInvalidAmount, start)
		wscutils.SendErrorResponse(c, wscutils.NewFieldErrorResponse(wscutils.ErrcodeInvalidAmount, "amount", req.Amount))
		return
	}

	conv, ok := converter(c, s)
	if !ok {
		metrics.ObserveConversion(m, metricKind, wscutils.ErrcodeRatesUnavailable, start)
		return
	}

	result, err := conv.Convert(amount, currency.Code(req.From), currency.Code(req.To))
	if err != nil {
		errcode := sendConversionError(c, err)
		metrics.ObserveConversion(m, metricKind, errcode, start)
		lh.Info().LogActivity("Conversion failed", map[string]any{"request": req, "errcode": errcode})
		return
	}

	metrics.ObserveConversion(m, metricKind, "ok", start)
	lh.Debug0().LogActivity("Amount converted", map[string]any{"request": req, "result": result.String()})
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(ConvertResponse{
		Amount:         req.Amount,
		From:           req.From,
		To:             req.To,
		Result:         result.StringFixed(currency.Places),
		PublishingDate: conv.PublishingDate(),
	}))
}

// HandleGetRate handles GET /currency/rates/:code. The base currency has
// rate 1.
func HandleGetRate(c *gin.Context, s *service.Service) {
	code := currency.Code(c.Param("code")).Normalize()
	if !code.Valid() {
		wscutils.SendErrorResponse(c, wscutils.NewFieldErrorResponse(wscutils.ErrcodeInvalidCurrency, "code", code.String()))
		return
	}

	conv, ok := converter(c, s)
	if !ok {
		return
	}

	base, err := conv.OriginalCurrency()
	if err != nil {
		sendConversionError(c, err)
		return
	}
	rate := decimal.NewFromInt(1)
	if code != base {
		if rate, err = conv.Rate(code); err != nil {
			sendConversionError(c, err)
			return
		}
	}

	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(RateResponse{
		Code:           code.String(),
		Base:           base.String(),
		Rate:           rate.String(),
		PublishingDate: conv.PublishingDate(),
	}))
}

// validate runs the struct rules, then checks that both codes are ones BNR
// publishes.
func validate(req ConvertRequest) []wscutils.ErrorMessage {
	validationErrors := wscutils.WscValidate(req, func(fe validator.FieldError) []string {
		if fe.Tag() == "required" {
			return nil
		}
		return []string{fmt.Sprint(fe.Value())}
	})
	if len(validationErrors) > 0 {
		return validationErrors
	}

	for _, fc := range []struct{ field, code string }{{"from", req.From}, {"to", req.To}} {
		if !currency.Code(fc.code).Valid() {
			field := fc.field
			validationErrors = append(validationErrors, wscutils.BuildErrorMessage(wscutils.ErrcodeInvalidCurrency, &field, fc.code))
		}
	}
	return validationErrors
}

// converter builds a Converter from the current rate document. On failure
// it has already answered the request.
func converter(c *gin.Context, s *service.Service) (*currency.Converter, bool) {
	lh := s.Logger.WithModule("currencysvc")

	f, err := service.Dependency[*ratefetch.Fetcher](s, service.DepRateFetcher)
	if err != nil {
		lh.Error(err).LogActivity("Rate fetcher missing", nil)
		wscutils.SendErrorResponseWithStatus(c, http.StatusInternalServerError, wscutils.NewErrorResponse(wscutils.ErrcodeUnknown))
		return nil, false
	}

	src, err := f.Contents(c.Request.Context())
	if err != nil {
		lh.Error(err).LogActivity("Rates unavailable", map[string]any{"path": f.Path()})
		wscutils.SendErrorResponseWithStatus(c, http.StatusServiceUnavailable, wscutils.NewErrorResponse(wscutils.ErrcodeRatesUnavailable))
		return nil, false
	}

	conv, err := currency.NewConverter(src)
	if err != nil {
		lh.Error(err).LogActivity("Rate document rejected", map[string]any{"path": f.Path()})
		wscutils.SendErrorResponseWithStatus(c, http.StatusServiceUnavailable, wscutils.NewErrorResponse(wscutils.ErrcodeRatesUnavailable))
		return nil, false
	}
	return conv, true
}

// sendConversionError answers with the error response for a Converter
// error and returns its errcode.
func sendConversionError(c *gin.Context, err error) string {
	var notFound *currency.RateNotFoundError
	switch {
	case errors.As(err, &notFound):
		wscutils.SendErrorResponseWithStatus(c, http.StatusNotFound,
			wscutils.NewFieldErrorResponse(wscutils.ErrcodeRateNotFound, "code", notFound.Code.String()))
		return wscutils.ErrcodeRateNotFound
	case errors.Is(err, currency.ErrOriginalCurrency):
		wscutils.SendErrorResponseWithStatus(c, http.StatusServiceUnavailable, wscutils.NewErrorResponse(wscutils.ErrcodeRatesUnavailable))
		return wscutils.ErrcodeRatesUnavailable
	default:
		wscutils.SendErrorResponseWithStatus(c, http.StatusInternalServerError, wscutils.NewErrorResponse(wscutils.ErrcodeUnknown))
		return wscutils.ErrcodeUnknown
	}
}
