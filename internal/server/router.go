// Package server assembles the gin engine: middleware, operational
// endpoints and the media routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"anilistapi/internal/media"
	"anilistapi/internal/middleware"
)

const WelcomeMessage = "📺📚 Welcome to AniList Anime & Manga REST API"

type Deps struct {
	Log      *logrus.Logger
	Media    *media.Handler
	Endpoint string
	Version  string
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.Recovery(d.Log),
		cors.New(corsConfig()),
	)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, WelcomeMessage)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if d.Media.Cache.Closed() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "cache": "closed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "cache": "ok"})
	})

	router.GET("/debug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":       d.Version,
			"upstream":      d.Endpoint,
			"cache_entries": d.Media.Cache.Len(),
			"cache_ttl":     d.Media.Cache.TTL().String(),
			"cache_sweep":   d.Media.Cache.CheckPeriod().String(),
			"routes":        len(d.Media.Routes),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	d.Media.RegisterRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not Found"})
	})

	return router
}

// corsConfig allows any origin, like the open public API it fronts.
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
