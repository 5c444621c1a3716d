package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"

	"shop/internal/app"
	"shop/internal/config"
	"shop/internal/infrastructure/clients"
	"shop/internal/observability"
)

func main() {
	log.Init(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	watermillLogger := watermill.NewStdLogger(false, false)

	tp := observability.ConfigureTraceProvider()
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	db, err := sqlx.Open("postgres", cfg.Database.URL)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer redisClient.Close()

	stripeClient := clients.NewStripeClient(cfg.Stripe, zerolog.New(os.Stdout))
	mailer := clients.NewResendMailer(cfg.Resend)

	a, err := app.NewApp(
		watermillLogger,
		stripeClient,
		mailer,
		cfg.Notifications,
		redisClient,
		db,
	)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		panic(err)
	}
}
