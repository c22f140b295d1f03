package currencysvc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remiges-tech/leu/metrics"
	"github.com/remiges-tech/leu/ratefetch"
	"github.com/remiges-tech/leu/service"
	"github.com/remiges-tech/leu/wscutils"
)

const ratesURL = "https://www.bnr.ro/nbrfxrates.xml"

const ratesXML = `<?xml version="1.0" encoding="utf-8"?>
<DataSet xmlns="http://www.bnr.ro/xsd">
	<Header>
		<Publisher>National Bank of Romania</Publisher>
		<PublishingDate>2009-07-20</PublishingDate>
	</Header>
	<Body>
		<OrigCurrency>RON</OrigCurrency>
		<Cube date="2009-07-20">
			<Rate currency="EUR">4.2175</Rate>
			<Rate currency="USD">3.0183</Rate>
			<Rate currency="JPY" multiplier="100">3.2069</Rate>
		</Cube>
	</Body>
</DataSet>`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	s       *service.Service
	m       *metrics.PrometheusMetrics
	fetches atomic.Int32
}

func setup(t *testing.T, fetch ratefetch.FetchFunc) *fixture {
	t.Helper()
	fx := &fixture{m: metrics.NewPrometheusMetrics()}
	require.NoError(t, metrics.RegisterConversionMetrics(fx.m))

	if fetch == nil {
		fetch = func(context.Context, string) ([]byte, error) { return []byte(ratesXML), nil }
	}
	counted := func(ctx context.Context, path string) ([]byte, error) {
		fx.fetches.Add(1)
		return fetch(ctx, path)
	}
	f, err := ratefetch.New(ratesURL, ratefetch.NewInMemoryCache(), ratefetch.WithFetchFunc(counted))
	require.NoError(t, err)

	lh := logharbour.NewLogger(&logharbour.LoggerContext{}, "currencysvc-test", io.Discard)
	fx.s = service.NewService(gin.New()).
		WithLogger(lh).
		WithDependency(service.DepMetrics, metrics.Metrics(fx.m)).
		WithDependency(service.DepRateFetcher, f)
	RegisterRoutes(fx.s)
	return fx
}

func (fx *fixture) do(req *http.Request) (*httptest.ResponseRecorder, wscutils.Response) {
	w := httptest.NewRecorder()
	fx.s.Router.ServeHTTP(w, req)
	var resp wscutils.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func convertRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/currency/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestConvert(t *testing.T) {
	fx := setup(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"cross rate", `{"data":{"amount":"100","from":"EUR","to":"USD"}}`, "139.7310"},
		{"to base", `{"data":{"amount":"100","from":"eur","to":"ron"}}`, "421.7500"},
		{"from base", `{"data":{"amount":"421.75","from":"RON","to":"EUR"}}`, "100.0000"},
		{"multiplier", `{"data":{"amount":"1000","from":"JPY","to":"RON"}}`, "32.0690"},
		{"same code", `{"data":{"amount":"5","from":"USD","to":"USD"}}`, "5.0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := fx.do(convertRequest(tt.body))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			data := resp.Data.(map[string]any)
			assert.Equal(t, tt.want, data["result"])
			assert.Equal(t, "2009-07-20", data["publishing_date"])
		})
	}

	// one fetch serves the whole publication window
	assert.Equal(t, int32(1), fx.fetches.Load())
}

func TestConvertValidation(t *testing.T) {
	fx := setup(t, nil)

	tests := []struct {
		name     string
		body     string
		status   int
		errcodes []string
		field    string
	}{
		{"malformed json", `{"data":`, http.StatusBadRequest, []string{wscutils.ErrcodeInvalidJson}, ""},
		{"missing fields", `{"data":{}}`, http.StatusBadRequest, []string{"required", "required", "required"}, "amount"},
		{"bad amount", `{"data":{"amount":"1,5","from":"EUR","to":"USD"}}`, http.StatusBadRequest, []string{"numeric"}, "amount"},
		{"not iso4217", `{"data":{"amount":"1","from":"XXY","to":"USD"}}`, http.StatusBadRequest, []string{"iso4217"}, "from"},
		{"not published", `{"data":{"amount":"1","from":"EUR","to":"ISK"}}`, http.StatusBadRequest, []string{wscutils.ErrcodeInvalidCurrency}, "to"},
		{"no rate in document", `{"data":{"amount":"1","from":"INR","to":"EUR"}}`, http.StatusNotFound, []string{wscutils.ErrcodeRateNotFound}, "code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := fx.do(convertRequest(tt.body))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, wscutils.ErrorStatus, resp.Status)
			require.Len(t, resp.Messages, len(tt.errcodes))
			for i, code := range tt.errcodes {
				assert.Equal(t, code, resp.Messages[i].ErrCode)
			}
			if tt.field != "" {
				require.NotNil(t, resp.Messages[0].Field)
				assert.Equal(t, tt.field, *resp.Messages[0].Field)
			}
		})
	}
}

func TestConvertRatesUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		fetch ratefetch.FetchFunc
	}{
		{"fetch fails", func(context.Context, string) ([]byte, error) { return nil, errors.New("connection refused") }},
		{"malformed document", func(context.Context, string) ([]byte, error) { return []byte("<html>"), nil }},
		{"two base currencies", func(context.Context, string) ([]byte, error) {
			return []byte(strings.Replace(ratesXML, "<OrigCurrency>RON</OrigCurrency>", "<OrigCurrency>RON</OrigCurrency><OrigCurrency>EUR</OrigCurrency>", 1)), nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := setup(t, tt.fetch)
			w, resp := fx.do(convertRequest(`{"data":{"amount":"1","from":"EUR","to":"USD"}}`))
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			require.Len(t, resp.Messages, 1)
			assert.Equal(t, wscutils.ErrcodeRatesUnavailable, resp.Messages[0].ErrCode)
		})
	}
}

func TestConvertWithoutFetcher(t *testing.T) {
	lh := logharbour.NewLogger(&logharbour.LoggerContext{}, "currencysvc-test", io.Discard)
	s := service.NewService(gin.New()).WithLogger(lh)
	RegisterRoutes(s)

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, convertRequest(`{"data":{"amount":"1","from":"EUR","to":"USD"}}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRate(t *testing.T) {
	fx := setup(t, nil)

	tests := []struct {
		code string
		want string
	}{
		{"EUR", "4.2175"},
		{"jpy", "0.032069"},
		{"RON", "1"},
	}
	for _, tt := range tests {
		w, resp := fx.do(httptest.NewRequest(http.MethodGet, "/currency/rates/"+tt.code, nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := resp.Data.(map[string]any)
		assert.Equal(t, strings.ToUpper(tt.code), data["code"])
		assert.Equal(t, "RON", data["base"])
		assert.Equal(t, tt.want, data["rate"])
	}

	w, resp := fx.do(httptest.NewRequest(http.MethodGet, "/currency/rates/ISK", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, wscutils.ErrcodeInvalidCurrency, resp.Messages[0].ErrCode)

	w, resp = fx.do(httptest.NewRequest(http.MethodGet, "/currency/rates/INR", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, wscutils.ErrcodeRateNotFound, resp.Messages[0].ErrCode)
	assert.Equal(t, []string{"INR"}, resp.Messages[0].Vals)
}

func TestConversionsAreCounted(t *testing.T) {
	fx := setup(t, nil)

	fx.do(convertRequest(`{"data":{"amount":"1","from":"EUR","to":"USD"}}`))
	fx.do(convertRequest(`{"data":{"amount":"1","from":"INR","to":"USD"}}`))
	fx.do(convertRequest(`{"data":{"amount":"1","from":"ISK","to":"USD"}}`))

	expected := `
# HELP leu_conversions_total Conversions served, by kind and outcome
# TYPE leu_conversions_total counter
leu_conversions_total{kind="currency",outcome="invalid"} 1
leu_conversions_total{kind="currency",outcome="ok"} 1
leu_conversions_total{kind="currency",outcome="rate_not_found"} 1
`
	require.NoError(t, testutil.GatherAndCompare(fx.m.Registry(), strings.NewReader(expected), metrics.ConversionsTotal))
}
