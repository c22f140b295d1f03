package numeralsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remiges-tech/leu/metrics"
	"github.com/remiges-tech/leu/service"
	"github.com/remiges-tech/leu/wscutils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setup(t *testing.T) (*service.Service, *metrics.PrometheusMetrics) {
	t.Helper()
	m := metrics.NewPrometheusMetrics()
	require.NoError(t, metrics.RegisterConversionMetrics(m))

	lh := logharbour.NewLogger(&logharbour.LoggerContext{}, "numeralsvc-test", io.Discard)
	s := service.NewService(gin.New()).
		WithLogger(lh).
		WithDependency(service.DepMetrics, metrics.Metrics(m))
	RegisterRoutes(s)
	return s, m
}

func do(s *service.Service, req *http.Request) (*httptest.ResponseRecorder, wscutils.Response) {
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	var resp wscutils.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestGetWords(t *testing.T) {
	s, _ := setup(t)

	tests := []struct {
		amount string
		want   string
	}{
		{"68", "SAIZECI SI OPT"},
		{"0131001", "O SUTA TREIZECI SI UNU DE MII, UNU"},
		{"999999999", "NOUA SUTE NOUAZECI SI NOUA DE MILIOANE, NOUA SUTE NOUAZECI SI NOUA DE MII, NOUA SUTE NOUAZECI SI NOUA"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			w, resp := do(s, httptest.NewRequest(http.MethodGet, "/numerals/"+tt.amount, nil))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, wscutils.SuccessStatus, resp.Status)
			data := resp.Data.(map[string]any)
			assert.Equal(t, tt.amount, data["amount"])
			assert.Equal(t, tt.want, data["words"])
		})
	}
}

func TestGetWordsErrors(t *testing.T) {
	s, _ := setup(t)

	tests := []struct {
		amount  string
		errcode string
		vals    []string
	}{
		{"12a", wscutils.ErrcodeInvalidAmount, []string{"12a"}},
		{"1000000000", wscutils.ErrcodeUnsupportedMagnitude, []string{"1000000000", "999999999"}},
	}
	for _, tt := range tests {
		w, resp := do(s, httptest.NewRequest(http.MethodGet, "/numerals/"+tt.amount, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, wscutils.ErrorStatus, resp.Status)
		require.Len(t, resp.Messages, 1)
		msg := resp.Messages[0]
		assert.Equal(t, tt.errcode, msg.ErrCode)
		require.NotNil(t, msg.Field)
		assert.Equal(t, "amount", *msg.Field)
		assert.Equal(t, tt.vals, msg.Vals)
		id, _ := wscutils.MsgID(tt.errcode)
		assert.Equal(t, id, msg.MsgID)
	}
}

func TestCreateWords(t *testing.T) {
	s, _ := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/numerals", strings.NewReader(`{"data":{"amount":"0131"}}`))
	req.Header.Set("Content-Type", "application/json")
	w, resp := do(s, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := resp.Data.(map[string]any)
	assert.Equal(t, "O SUTA TREIZECI SI UNU", data["words"])
}

func TestCreateWordsValidation(t *testing.T) {
	s, _ := setup(t)

	tests := []struct {
		name    string
		body    string
		errcode string
	}{
		{"malformed json", `{"data":`, wscutils.ErrcodeInvalidJson},
		{"missing amount", `{"data":{}}`, "required"},
		{"not numeric", `{"data":{"amount":"abc"}}`, "numeric"},
		{"negative", `{"data":{"amount":"-5"}}`, wscutils.ErrcodeInvalidAmount},
		{"too large", `{"data":{"amount":"1000000000"}}`, wscutils.ErrcodeUnsupportedMagnitude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/numerals", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w, resp := do(s, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.Len(t, resp.Messages, 1)
			assert.Equal(t, tt.errcode, resp.Messages[0].ErrCode)
		})
	}
}

func TestConversionsAreCounted(t *testing.T) {
	s, m := setup(t)

	for _, amount := range []string{"1", "2", "x"} {
		do(s, httptest.NewRequest(http.MethodGet, "/numerals/"+amount, nil))
	}

	expected := `
# HELP leu_conversions_total Conversions served, by kind and outcome
# TYPE leu_conversions_total counter
leu_conversions_total{kind="numeral",outcome="invalid_amount"} 1
leu_conversions_total{kind="numeral",outcome="ok"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), metrics.ConversionsTotal))
}

func TestWithoutMetrics(t *testing.T) {
	lh := logharbour.NewLogger(&logharbour.LoggerContext{}, "numeralsvc-test", io.Discard)
	s := service.NewService(gin.New()).WithLogger(lh)
	RegisterRoutes(s)

	w, _ := do(s, httptest.NewRequest(http.MethodGet, "/numerals/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
