package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"bidemoloader/bootstrap"
	"bidemoloader/config"
	"bidemoloader/pkg/logger"
	"bidemoloader/pkg/metrics"
	"bidemoloader/repository"
	"bidemoloader/services/datafiles"
)

func main() {
	// 1) Load config
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("LoadConfig error: %v", err)
	}

	// 2) Init structured logger with config
	if err := logger.Init(logger.Options{
		Path:       config.Cfg.LogFile,
		Level:      logger.ParseLogLevel(config.Cfg.LogLevel),
		MaxSize:    config.Cfg.LogMaxSize,
		MaxBackups: config.Cfg.LogMaxBackups,
		MaxAge:     config.Cfg.LogMaxAge,
		Compress:   config.Cfg.LogCompress,
	}); err != nil {
		log.Fatalf("Logger init error: %v", err)
	}
	defer logger.Close()
	logger.Infof("Starting bidemoloader with log level: %s", config.Cfg.LogLevel)

	// 3) Stop between loaders on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Errorf("Example loading failed: %v", err)
		config.CloseDB()
		logger.Fatalf("bidemoloader exited with error")
	}
	config.CloseDB()
	logger.Infof("bidemoloader finished")
}

func run(ctx context.Context) error {
	// 4) Connect DB (GORM) and create the metadata tables
	if err := config.ConnectDB(ctx); err != nil {
		return err
	}
	if err := repository.AutoMigrate(config.DB); err != nil {
		return err
	}

	// 5) Example data source
	source, err := datafiles.New(ctx, config.Cfg.DataDir, datafiles.S3Config{
		Region:          config.Cfg.S3Region,
		Endpoint:        config.Cfg.S3Endpoint,
		PathStyle:       config.Cfg.S3PathStyle,
		AccessKeyID:     config.Cfg.S3AccessKeyID,
		SecretAccessKey: config.Cfg.S3SecretAccessKey,
	})
	if err != nil {
		return err
	}

	// 6) Load the examples
	rec := metrics.NewRecorder()
	_, loadErr := bootstrap.LoadExamples(ctx, config.DB, source, bootstrap.Options{
		DatabaseURI:       config.Cfg.DatabaseURI,
		RowLimit:          config.Cfg.RowLimit,
		ElasticsearchURLs: config.Cfg.ElasticsearchURLs,
		Examples:          config.Cfg.Examples,
		LoadTestData:      config.Cfg.LoadTestData,
	}, rec)

	// 7) Push run metrics, also after a failed run
	if config.Cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rec.Push(pushCtx, config.Cfg.PushgatewayURL, metrics.DefaultJob); err != nil {
			logger.Warnf("Failed to push metrics to %s: %v", config.Cfg.PushgatewayURL, err)
		}
	}
	return loadErr
}
