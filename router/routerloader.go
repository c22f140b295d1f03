package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"

	"github.com/remiges-tech/leu/metrics"
)

// SetupRouter returns an engine with request logging, panic recovery and,
// when m is not nil, request metrics plus a /metrics endpoint. /health
// answers 200 and is always registered.
func SetupRouter(l *logharbour.Logger, m *metrics.PrometheusMetrics) (*gin.Engine, error) {
	r := gin.New()
	r.Use(LogRequest(NewLogHarbourAdapter(l)), Recovery())

	if m != nil {
		mw, err := m.GinMiddleware()
		if err != nil {
			return nil, err
		}
		r.Use(mw)
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r, nil
}
