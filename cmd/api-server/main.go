package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"anilistapi/internal/anilist"
	"anilistapi/internal/cache"
	"anilistapi/internal/media"
	"anilistapi/internal/server"
	"anilistapi/pkg/models"
	"anilistapi/pkg/tracing"
	"anilistapi/pkg/utils"
)

const (
	serviceName = "anilistapi"
	version     = "1.0.0"
)

func main() {
	v := utils.NewViper()

	cmd := &cobra.Command{
		Use:          "api-server",
		Short:        "REST API over AniList for manga and anime",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := utils.LoadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	cmd.Flags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	bindFlag(v, cmd, "port", "port")
	bindFlag(v, cmd, "log.level", "log-level")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("api-server failed")
	}
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		logrus.WithError(err).Fatalf("bind flag %s", flag)
	}
}

func run(ctx context.Context, cfg utils.Config) error {
	log := utils.NewLogger(cfg.Log, os.Stdout)
	gin.SetMode(cfg.GinMode)

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName, version, os.Stdout)
	if err != nil {
		return err
	}

	responses := cache.New[models.Result](cache.Options{
		Name:        "responses",
		TTL:         cfg.Cache.TTL,
		CheckPeriod: cfg.Cache.CheckPeriod,
		MaxEntries:  cfg.Cache.MaxEntries,
	})

	client := anilist.NewClient(cfg.AniList.Endpoint, cfg.AniList.Timeout)
	handler := media.NewHandler(client, responses, log)

	router := server.NewRouter(server.Deps{
		Log:      log,
		Media:    handler,
		Endpoint: client.Endpoint,
		Version:  version,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":      httpSrv.Addr,
			"upstream":  client.Endpoint,
			"cache_ttl": cfg.Cache.TTL.String(),
		}).Info("HTTP API server listening")
		for _, r := range handler.Routes {
			log.Debug(r.String())
		}
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutdown signal received")
	case runErr = <-errCh:
		log.WithError(runErr).Error("server error")
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown error")
	}
	responses.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.WithError(err).Warn("tracing shutdown error")
	}

	log.Info("server stopped")
	return runErr
}
