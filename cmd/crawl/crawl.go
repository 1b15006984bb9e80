package crawl

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/tenderwatch/crawler/config"
	"github.com/tenderwatch/crawler/export"
	"github.com/tenderwatch/crawler/fetch"
	"github.com/tenderwatch/crawler/limiter"
	"github.com/tenderwatch/crawler/log"
	"github.com/tenderwatch/crawler/proxy"
	"github.com/tenderwatch/crawler/scrape"
	"github.com/tenderwatch/crawler/storage/sqlstorage"
)

var CrawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "crawl new tenders and export them to xlsx.",
	Long:  "crawl new tenders and export them to xlsx.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		Run()
	},
}

var (
	configPath string
	pages      int
	outPath    string
)

func init() {
	CrawlCmd.Flags().StringVar(
		&configPath, "config", "", "set config file path")

	CrawlCmd.Flags().IntVar(
		&pages, "pages", 0, "set listing page budget, 0 for the configured ceiling")

	CrawlCmd.Flags().StringVar(
		&outPath, "out", "", "set xlsx output path, empty for a timestamped name")
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	records, err := s.Run(ctx, pages)
	if err != nil {
		logger.Error("crawl finished with errors", zap.Error(err))
	}

	logger.Info("crawl complete", zap.Int("tenders", len(records)))

	if len(records) == 0 {
		logger.Info("no new tenders found")
		return
	}

	path := outPath
	if path == "" {
		path = export.Filename(time.Now())
	}

	if err := export.WriteFile(records, path); err != nil {
		logger.Error("write xlsx failed", zap.Error(err))
	} else {
		logger.Info("xlsx written", zap.String("path", path))
	}

	if cfg.Storage.Enabled {
		storage, err := sqlstorage.New(
			sqlstorage.WithSQLURL(cfg.Storage.SQLURL),
			sqlstorage.WithBatchCount(cfg.Storage.BatchCount),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
		)
		if err != nil {
			logger.Error("create sqlstorage failed", zap.Error(err))
			return
		}

		if err := storage.Save(records...); err != nil {
			logger.Error("save records failed", zap.Error(err))
		}

		if err := storage.Flush(); err != nil {
			logger.Error("flush records failed", zap.Error(err))
		}
	}
}
