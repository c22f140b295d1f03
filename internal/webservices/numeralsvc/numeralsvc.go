// Package numeralsvc serves Romanian words for amounts.
package numeralsvc

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/remiges-tech/leu/metrics"
	"github.com/remiges-tech/leu/numeral"
	"github.com/remiges-tech/leu/service"
	"github.com/remiges-tech/leu/wscutils"
)

const metricKind = "numeral"

// WordsRequest is the data of a POST /numerals request.
type WordsRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

// WordsResponse is the data of a successful response.
type WordsResponse struct {
	Amount string `json:"amount"`
	Words  string `json:"words"`
}

// RegisterRoutes registers the numeral handlers on s.
func RegisterRoutes(s *service.Service) {
	s.RegisterRoute(http.MethodGet, "/numerals/:amount", HandleGetWords)
	s.RegisterRoute(http.MethodPost, "/numerals", HandleCreateWords)
}

// HandleGetWords handles GET /numerals/:amount.
func HandleGetWords(c *gin.Context, s *service.Service) {
	respond(c, s, c.Param("amount"))
}

// HandleCreateWords handles POST /numerals.
func HandleCreateWords(c *gin.Context, s *service.Service) {
	var req WordsRequest

	// step 1: bind request body to struct
	if err := wscutils.BindJSON(c, &req); err != nil {
		return
	}

	// step 2: validate request body
	if validationErrors := wscutils.WscValidate(req, func(fe validator.FieldError) []string {
		return []string{req.Amount}
	}); len(validationErrors) > 0 {
		wscutils.SendErrorResponse(c, wscutils.NewResponse(wscutils.ErrorStatus, nil, validationErrors))
		return
	}

	respond(c, s, req.Amount)
}

func respond(c *gin.Context, s *service.Service, amount string) {
	start := time.Now()
	m, _ := service.Dependency[metrics.Metrics](s, service.DepMetrics)
	lh := s.Logger.WithModule("numeralsvc").WithOp("towords")

	words, err := numeral.ToWordsString(amount)
	if err != nil {
		errcode := errcodeFor(err)
		metrics.ObserveConversion(m, metricKind, errcode, start)
		lh.Info().LogActivity("Amount rejected", map[string]any{"amount": amount, "errcode": errcode})

		vals := []string{amount}
		if errcode == wscutils.ErrcodeUnsupportedMagnitude {
			vals = append(vals, strconv.FormatInt(numeral.MaxAmount, 10))
		}
		wscutils.SendErrorResponse(c, wscutils.NewFieldErrorResponse(errcode, "amount", vals...))
		return
	}

	metrics.ObserveConversion(m, metricKind, "ok", start)
	lh.Debug0().LogActivity("Amount converted", map[string]any{"amount": amount, "words": words})
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(WordsResponse{Amount: amount, Words: words}))
}

func errcodeFor(err error) string {
	switch {
	case errors.Is(err, numeral.ErrUnsupportedMagnitude):
		return wscutils.ErrcodeUnsupportedMagnitude
	case errors.Is(err, numeral.ErrInvalidAmount):
		return wscutils.ErrcodeInvalidAmount
	default:
		return wscutils.ErrcodeUnknown
	}
}
