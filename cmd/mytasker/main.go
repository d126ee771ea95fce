package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	adapthttp "mytasker/internal/adapter/http"
	"mytasker/internal/adapter/postgres"
	"mytasker/internal/app"
	"mytasker/internal/audit"
	"mytasker/internal/backup"
	"mytasker/internal/config"
	"mytasker/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("db open failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	users := postgres.NewUserRepo(db)
	tasks := postgres.NewTaskRepo(db)
	notifications := postgres.NewNotificationRepo(db)
	audits := postgres.NewAuditRepo(db)

	sink := audit.NewStoreSink(audits, logger)
	sessions := session.NewManager(users, logger, session.Config{
		CookieSecure: cfg.CookieSecure,
	})
	gate := app.NewGate(users, sink, logger)

	authSvc := app.NewAuthService(users, sessions, sink, logger)
	taskSvc := app.NewTaskService(tasks, sink, logger)
	notificationSvc := app.NewNotificationService(notifications, sink, logger)
	adminSvc := app.NewAdminService(users, audits, sink, logger)
	retentionSvc := app.NewRetentionService(users, sink, logger)

	runner := backup.NewRunner(cfg.BackupDir, backup.ConnInfo{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	}, cfg.PGDumpPath, cfg.PSQLPath, logger)

	var uploader *backup.Uploader
	if cfg.S3Enabled() {
		uploader = backup.NewUploader(backup.S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		}, logger)
	}
	backupSvc := app.NewBackupService(runner, uploader, sink, logger)

	var sso *adapthttp.SSO
	if cfg.SSOEnabled() {
		sso, err = adapthttp.NewSSO(context.Background(), cfg.SSOIssuer,
			cfg.SSOClientID, cfg.SSOClientSecret, cfg.SSORedirectURL,
			users, sessions, logger)
		if err != nil {
			logger.Error("sso setup failed", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go retentionSvc.Run(ctx, 24*time.Hour)

	srv := adapthttp.New(authSvc, taskSvc, notificationSvc, adminSvc,
		backupSvc, gate, sessions, sink, logger, sso)

	logger.Info("listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
