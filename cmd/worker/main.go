package main

import (
	"log"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"

	"meetapi/internal/config"
	"meetapi/internal/notify"
)

// The worker consumes queued email tasks and delivers them over SMTP. It
// shares the Redis connection settings with the API process.
func main() {
	cfg := config.Load()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
		},
	)

	handler := notify.NewHandler(notify.NewSMTPSender(cfg.SMTP), cfg.BaseURL)

	mux := asynq.NewServeMux()
	handler.Register(mux)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("worker exited: %v", err)
	}
}
