// Package service ties a gin engine to the dependencies the leu web
// services share: configuration, logger, rate fetcher, metrics.
//
// Handlers are registered as HandlerFunc and receive the Service alongside
// the gin context, so they reach their dependencies without globals:
//
//	s := service.NewService(r).WithLogger(lh).WithDependency(service.DepRateFetcher, f)
//	s.RegisterRoute(http.MethodGet, "/numerals/:amount", numeralsvc.HandleGetWords)
package service

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"

	"github.com/remiges-tech/leu/config"
)

// Keys of the dependencies the leu handlers look up.
const (
	DepMetrics     = "metrics"
	DepRateFetcher = "rateFetcher"
	DepUploadLimit = "uploadMaxMemory"
)

// Dependencies is a map to hold arbitrary dependencies.
type Dependencies map[string]any

// Service holds the router and the dependencies injected into its handlers.
type Service struct {
	Config       config.Config
	Router       *gin.Engine
	Logger       *logharbour.Logger
	Dependencies Dependencies
}

func NewService(r *gin.Engine) *Service {
	return &Service{
		Router:       r,
		Dependencies: make(Dependencies),
	}
}

func (s *Service) WithConfig(cfg config.Config) *Service {
	s.Config = cfg
	return s
}

func (s *Service) WithLogger(l *logharbour.Logger) *Service {
	s.Logger = l
	return s
}

// WithDependency injects an arbitrary dependency under key.
func (s *Service) WithDependency(key string, value any) *Service {
	if s.Dependencies == nil {
		s.Dependencies = make(Dependencies)
	}
	s.Dependencies[key] = value
	return s
}

// Dependency returns the dependency stored under key as a T.
func Dependency[T any](s *Service, key string) (T, error) {
	var zero T
	v, ok := s.Dependencies[key]
	if !ok {
		return zero, fmt.Errorf("dependency %q not registered", key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("dependency %q is %T, not %T", key, v, zero)
	}
	return t, nil
}

// HandlerFunc is a gin handler that also receives the Service.
type HandlerFunc func(*gin.Context, *Service)

func (s *Service) wrap(handler HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		handler(c, s)
	}
}

// RegisterRoute registers handler on the service's engine.
func (s *Service) RegisterRoute(method, path string, handler HandlerFunc) {
	s.Router.Handle(method, path, s.wrap(handler))
}

// RouteGroup is a set of routes under a common path prefix.
type RouteGroup struct {
	Group   *gin.RouterGroup
	service *Service
}

func (s *Service) CreateGroup(path string, middleware ...gin.HandlerFunc) *RouteGroup {
	return &RouteGroup{
		Group:   s.Router.Group(path, middleware...),
		service: s,
	}
}

// RegisterRoute registers handler relative to the group's prefix.
func (g *RouteGroup) RegisterRoute(method, path string, handler HandlerFunc) {
	g.Group.Handle(method, path, g.service.wrap(handler))
}

func (g *RouteGroup) CreateSubGroup(path string) *RouteGroup {
	return &RouteGroup{
		Group:   g.Group.Group(path),
		service: g.service,
	}
}
