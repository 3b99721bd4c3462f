package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/pintrain/internal/api"
	"github.com/example/pintrain/internal/cache"
	"github.com/example/pintrain/internal/config"
	"github.com/example/pintrain/internal/database"
	"github.com/example/pintrain/internal/importer"
	"github.com/example/pintrain/internal/pinyin"
	"github.com/example/pintrain/internal/review"
	"github.com/example/pintrain/internal/scheduler"
	"github.com/example/pintrain/internal/srs"
)

// logNotifier writes reminders to the log; a push or chat integration can
// replace it without touching the scheduler.
type logNotifier struct{}

func (logNotifier) SendReminder(userID string, dueCount int) error {
	log.Printf("reminder: user %s has %d items due", userID, dueCount)
	return nil
}

// dueCounterAdapter bridges the item state repository to the scheduler.
type dueCounterAdapter struct {
	repo *database.ItemStateRepository
}

func (a dueCounterAdapter) CountDueByUser(ctx context.Context, now time.Time) ([]scheduler.UserDue, error) {
	counts, err := a.repo.CountDueByUser(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.UserDue, 0, len(counts))
	for _, c := range counts {
		out = append(out, scheduler.UserDue{UserID: c.UserID, DueCount: c.DueCount})
	}
	return out, nil
}

func main() {
	importPath := flag.String("import", "", "import lesson content from an .xlsx or .csv file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.DBType, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	itemRepo := database.NewItemRepository(db)

	if *importPath != "" {
		result, err := importer.Import(context.Background(), itemRepo, importer.DefaultConfig(*importPath))
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Import finished: %d processed, %d created, %d updated, %d skipped",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		for _, e := range result.Errors {
			log.Printf("Import warning: %s", e)
		}
		return
	}

	stateRepo := database.NewItemStateRepository(db)
	statsRepo := database.NewDailyStatsRepository(db)
	queueCache := cache.New(nil, nil)

	engine := review.New(stateRepo, itemRepo, statsRepo, pinyin.New(),
		queueCache, srs.New(), nil, nil, review.Config{
			QueueTTL:     cfg.QueueCacheTTL,
			DefaultLimit: cfg.QueueDefaultLimit,
			MaxLimit:     cfg.QueueMaxLimit,
		})

	jobs := scheduler.New(logNotifier{}, dueCounterAdapter{repo: stateRepo}, queueCache,
		nil, nil, scheduler.Config{
			ReminderStartHour: cfg.ReminderStartHour,
			ReminderEndHour:   cfg.ReminderEndHour,
			SweepInterval:     cfg.CacheSweepEvery,
		})
	jobs.Start()
	defer jobs.Stop()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewHandler(engine).Router(),
	}

	go func() {
		log.Printf("Listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}
