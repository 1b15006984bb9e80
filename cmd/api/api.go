package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	apiserver "github.com/tenderwatch/crawler/api"
	"github.com/tenderwatch/crawler/config"
	"github.com/tenderwatch/crawler/fetch"
	"github.com/tenderwatch/crawler/limiter"
	"github.com/tenderwatch/crawler/log"
	"github.com/tenderwatch/crawler/proxy"
	"github.com/tenderwatch/crawler/scrape"
)

var APICmd = &cobra.Command{
	Use:   "api",
	Short: "run the HTTP API service.",
	Long:  "run the HTTP API service.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		Run()
	},
}

var (
	configPath    string
	listenAddress string
)

func init() {
	APICmd.Flags().StringVar(
		&configPath, "config", "", "set config file path")

	APICmd.Flags().StringVar(
		&listenAddress, "http", "", "set HTTP listen address, empty for the configured one")
}

func Run() {
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	// log
	logLevel, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	plugin := log.NewStdoutPlugin(logLevel)

	if cfg.LogFile != "" {
		filePlugin, closer := log.NewFilePlugin(cfg.LogFile, logLevel)
		defer closer.Close()

		plugin = zapcore.NewTee(plugin, filePlugin)
	}

	logger := log.NewLogger(plugin)
	logger.Info("log init end")

	zap.ReplaceGlobals(logger)

	// fetcher
	var p proxy.Func
	if len(cfg.Fetcher.ProxyURLs) > 0 {
		if p, err = proxy.RoundRobinSwitcher(cfg.Fetcher.ProxyURLs...); err != nil {
			logger.Error("RoundRobinSwitcher failed", zap.Error(err))
		}
	}

	f := &fetch.BrowserFetch{
		Client: fetch.NewClient(cfg.Timeout, p),
		Logger: logger,
	}

	// speed limiter
	secondLimit := rate.NewLimiter(limiter.Per(1, 2*time.Second), 1)
	minuteLimit := rate.NewLimiter(limiter.Per(cfg.Fetcher.RatePerMinute, time.Minute), cfg.Fetcher.RatePerMinute)
	multiLimiter := limiter.Multi(secondLimit, minuteLimit)

	s := scrape.NewScraper(
		scrape.WithBaseURL(cfg.BaseURL),
		scrape.WithMaxPages(cfg.MaxPages),
		scrape.WithWaitBounds(cfg.WaitMin, cfg.WaitMax),
		scrape.WithFetcher(f),
		scrape.WithLimiter(multiLimiter),
		scrape.WithLogger(logger),
	)

	gin.SetMode(gin.ReleaseMode)

	handler := apiserver.NewHandler(s, logger, cfg.API.DefaultPages)
	router := apiserver.SetupRouter(handler, cfg.API.Origins)

	addr := listenAddress
	if addr == "" {
		addr = cfg.API.Addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
