package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/guard"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	driver := db.Driver(cfg.DBDriver)
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "driver", cfg.DBDriver, "error", err)
	}
	defer dbh.Close()

	// --- Quiz content ---
	blobs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal("blob store", "error", err)
	}
	blobs.AllowAbsolute(cfg.BankFile, cfg.RosterFile)
	opts, err := cfg.BankOptions()
	if err != nil {
		log.Fatal("bank options", "error", err)
	}
	src := quiz.Source{
		Blobs:      blobs,
		Title:      cfg.Title,
		BankFile:   cfg.BankFile,
		RosterFile: cfg.RosterFile,
		Options:    opts,
		PerPage:    cfg.QuestionsPerPage,
	}
	content, err := src.Load()
	if err != nil {
		log.Fatal("load quiz", "error", err)
	}
	for _, w := range content.Bank.Warnings {
		log.Warn("question bank", "block", w.Block, "kind", w.Kind, "dropped", w.Dropped, "message", w.Message)
	}
	if content.Bank.Empty() {
		log.Warn("question bank is empty; /readyz will fail until reloaded", "file", cfg.BankFile)
	}

	// --- Submission delivery ---
	subs := submission.NewSQLStore(dbh, driver.DriverName())
	var syncer *submission.Syncer
	if cfg.SubmitURL != "" {
		client := submission.NewClient(submission.ClientConfig{
			URL:          cfg.SubmitURL,
			Timeout:      cfg.SubmitTimeout,
			TokenURL:     cfg.SubmitTokenURL,
			ClientID:     cfg.SubmitClientID,
			ClientSecret: cfg.SubmitClientSecret,
		})
		syncer = submission.NewSyncer(subs, client, time.Now, log.With("component", "syncer"))
		retrier := submission.NewRetrier(syncer, cfg.RetryInterval, cfg.MaxRetries, log.With("component", "retrier"))
		if err := retrier.Start(); err != nil {
			log.Fatal("retrier start", "error", err)
		}
		defer retrier.Stop()
	} else {
		log.Warn("SUBMIT_URL not set; submissions are stored locally only")
	}

	// --- Submission locks ---
	var locker guard.Locker = guard.NewSQLLocker(dbh)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DialTimeout: 5 * time.Second})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis ping", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		locker = guard.NewRedisLocker(rdb, 0)
	}

	events := syncx.NewEventRepo(dbh, "")
	svc := quiz.NewService(content, quiz.Deps{
		Store:       quiz.NewSQLStore(dbh, driver.DriverName()),
		Submissions: subs,
		Syncer:      syncer,
		Locker:      locker,
		Engine:      grading.NewEngine(grading.WithRejectOutOfRange(cfg.RejectOutOfRange)),
		Events:      events,
		Log:         log.With("component", "quiz"),
	})

	// --- Router ---
	h := api.NewRouter(api.RouterDeps{
		Service:     svc,
		Auth:        auth.NewAuthService(cfg.AuthHMACSecret),
		Operators:   []auth.Operator{{User: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: "admin"}},
		BankOptions: opts,
		Reload:      src.Load,
		Blobs:       blobs,
		Events:      events,
		CORSOrigins: cfg.CORSOrigins,
		Ready: func() error {
			pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := dbh.PingContext(pctx); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Ping(pctx).Err()
			}
			return nil
		},
		Log: log.With("component", "http"),
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver,
		"questions", content.Bank.Len(), "students", content.Roster.Len())

	select {
	case <-sigCtx.Done():
	case err := <-errCh:
		log.Error("server error", "error", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = server.Shutdown(shutdownCtx)
	log.Info("shut down")
}
