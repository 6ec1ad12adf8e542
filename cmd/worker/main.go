package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"schoolms/internal/attendance"
	"schoolms/internal/config"
	"schoolms/internal/queue"
	"schoolms/internal/store"
)

// Worker consumes attendance-marked events and keeps the cached daily
// summaries warm so the dashboard reads never hit cold SQL after a mark.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "school:attendance:marked")
	}

	svc := attendance.NewService(
		attendance.NewRepository(db.Client),
		store.NewRedisCache(redisClient.Client),
		cfg.SummaryCacheTTL,
	)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeAttendanceMarked {
			continue
		}

		date := string(msg.Body)
		if err := svc.RefreshSummary(ctx, date); err != nil {
			log.Printf("summary refresh for %s failed: %v", date, err)
			continue
		}
		log.Printf("summary refreshed for %s", date)
	}

	log.Println("worker exited")
}
