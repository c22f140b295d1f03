package service_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remiges-tech/leu/config"
	"github.com/remiges-tech/leu/service"
)

func TestWithConfig(t *testing.T) {
	cfg := &config.File{ConfigFilePath: "config.json"}
	s := service.NewService(nil).WithConfig(cfg)
	assert.Same(t, cfg, s.Config)
}

func TestDependency(t *testing.T) {
	s := service.NewService(nil).WithDependency("publishHour", 13)

	hour, err := service.Dependency[int](s, "publishHour")
	require.NoError(t, err)
	assert.Equal(t, 13, hour)

	_, err = service.Dependency[string](s, "publishHour")
	assert.ErrorContains(t, err, "is int")

	_, err = service.Dependency[int](s, "missing")
	assert.ErrorContains(t, err, "not registered")
}

func TestRegisterRouteAndGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := service.NewService(gin.New()).WithDependency("greeting", "SALUT")

	greet := func(c *gin.Context, s *service.Service) {
		g, _ := service.Dependency[string](s, "greeting")
		c.String(http.StatusOK, g+" "+c.Request.URL.Path)
	}
	s.RegisterRoute(http.MethodGet, "/root", greet)

	v1 := s.CreateGroup("/v1")
	v1.RegisterRoute(http.MethodPost, "/x", greet)
	v1.CreateSubGroup("/sub").RegisterRoute(http.MethodDelete, "/y", greet)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/root"},
		{http.MethodPost, "/v1/x"},
		{http.MethodDelete, "/v1/sub/y"},
	} {
		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, tc.path)
		assert.Equal(t, "SALUT "+tc.path, w.Body.String())
	}
}
