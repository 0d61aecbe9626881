// Package media serves the manga and anime REST routes on top of AniList.
package media

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"anilistapi/internal/anilist"
	"anilistapi/internal/cache"
	"anilistapi/internal/middleware"
	"anilistapi/pkg/models"
)

// Upstream is the part of the AniList client the handler needs.
type Upstream interface {
	Page(ctx context.Context, q anilist.Query, vars anilist.Variables) (*models.PageResult, error)
	Media(ctx context.Context, q anilist.Query, vars anilist.Variables) (*models.MediaRecord, error)
}

type Handler struct {
	Upstream Upstream
	Cache    *cache.Cache[models.Result]
	Routes   []Route
	Log      *logrus.Logger
}

func NewHandler(upstream Upstream, c *cache.Cache[models.Result], log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{Upstream: upstream, Cache: c, Routes: DefaultRoutes(), Log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	groups := map[models.Kind]*gin.RouterGroup{}
	for _, route := range h.Routes {
		g, ok := groups[route.Kind]
		if !ok {
			g = r.Group("/" + string(route.Kind))
			groups[route.Kind] = g
		}
		g.GET(route.Path, h.serve(route))
	}
}

// serve is the single validate -> cache -> fetch -> respond pipeline every
// route goes through.
func (h *Handler) serve(route Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, err := route.params(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, failure(err.Error()))
			return
		}

		key := params.CacheKey()
		log := middleware.Logger(c, h.Log).WithFields(logrus.Fields{
			"component": "media",
			"query":     route.Query.Name,
			"cache_key": key,
		})

		if cached, ok := h.Cache.Get(key).Get(); ok {
			log.Debug("cache hit")
			c.JSON(http.StatusOK, success(route, cached, true))
			return
		}

		res, err := h.fetch(c.Request.Context(), route, params)
		if err != nil {
			var upstreamErr *anilist.Error
			if errors.As(err, &upstreamErr) {
				log.WithField("upstream_status", upstreamErr.Status).Warn(upstreamErr.Detail())
			} else {
				log.WithError(err).Error("fetch failed")
			}
			c.JSON(http.StatusInternalServerError, failure(err.Error()))
			return
		}

		h.Cache.Set(key, res)
		log.Debug("cache miss, stored")
		c.JSON(http.StatusOK, success(route, res, false))
	}
}

func (h *Handler) fetch(ctx context.Context, route Route, params QueryParams) (models.Result, error) {
	if route.Operation.Paged() {
		page, err := h.Upstream.Page(ctx, route.Query, params.Variables())
		if err != nil {
			return models.Result{}, err
		}
		return models.Result{Page: page}, nil
	}

	m, err := h.Upstream.Media(ctx, route.Query, params.Variables())
	if err != nil {
		return models.Result{}, err
	}
	return models.Result{Media: m}, nil
}

func success(route Route, res models.Result, cached bool) gin.H {
	if route.Operation.Paged() {
		if res.Page == nil {
			res.Page = &models.PageResult{Media: []models.MediaRecord{}}
		}
		return gin.H{
			"success":    true,
			"pagination": res.Page.PageInfo,
			"results":    res.Page.Media,
			"cached":     cached,
		}
	}
	return gin.H{
		"success":          true,
		string(route.Kind): res.Media,
		"cached":           cached,
	}
}

func failure(message string) gin.H {
	return gin.H{"success": false, "message": message}
}
