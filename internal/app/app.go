package app

import (
	"context"
	"os"
	"time"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shop/internal/application/services"
	"shop/internal/infrastructure/clients"
	"shop/internal/infrastructure/event_publisher"
	"shop/internal/interfaces/events"
	"shop/internal/interfaces/http"
	"shop/internal/observability"
	"shop/internal/repository"
)

type App struct {
	watermillLogger watermill.LoggerAdapter
	logger          zerolog.Logger
	router          *message.Router
	srv             *http.Server
	db              *sqlx.DB
}

func NewApp(
	watermillLogger watermill.LoggerAdapter,
	stripeClient *clients.StripeClient,
	mailer events.Mailer,
	notifications events.NotificationAddresses,
	redisClient *redis.Client,
	db *sqlx.DB,
) (*App, error) {
	ordersRepo := repository.NewOrdersRepo(db)
	ticketSalesRepo := repository.NewTicketSalesRepo(db)
	saleRecordsRepo := repository.NewSaleRecordsRepo(db)

	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, err
	}

	var publisher message.Publisher
	publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, watermillLogger)
	if err != nil {
		return nil, err
	}

	publisher = observability.PublisherWithTracing{
		Publisher: publisher,
	}
	publisher = event_publisher.CorrelationPublisherDecorator{
		Publisher: publisher,
	}
	eventBus, err := events.NewEventBus(publisher, watermillLogger)
	if err != nil {
		return nil, err
	}

	checkoutService := services.NewCheckoutService(
		ordersRepo,
		ticketSalesRepo,
		saleRecordsRepo,
		stripeClient,
		eventBus,
	)

	e := commonHTTP.NewEcho()
	srv := http.NewServer(
		e,
		checkoutService,
		stripeClient,
		router.IsRunning,
	)

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(events.CorrelationIDMiddleware)
	router.AddMiddleware(events.LoggingMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	// skip marshalling errors before retrying
	router.AddMiddleware(events.SkipMarshallingErrorsMiddleware)

	marshaler := cqrs.JSONMarshaler{
		GenerateName: cqrs.StructName,
	}
	processor, err := events.NewEventProcessor(router, redisClient, marshaler, watermillLogger)
	if err != nil {
		return nil, err
	}
	err = processor.AddHandlers(
		events.OrderConfirmationHandler(mailer),
		events.FulfillmentNotificationHandler(mailer, notifications),

		events.TicketConfirmationHandler(mailer),
		events.GuestListNotificationHandler(mailer, notifications),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		watermillLogger: watermillLogger,
		logger:          zerolog.New(os.Stdout),
		router:          router,
		srv:             srv,
		db:              db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := repository.InitializeDBSchema(a.db)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().Msg("starting router")

		return a.router.Run(ctx)
	})

	g.Go(func() error {
		<-a.router.Running()
		a.logger.Info().Msg("router is running")

		a.logger.Info().Msg("starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		// Shut down
		<-ctx.Done()

		err := a.srv.Stop(ctx)
		if err != nil {
			a.logger.Err(err).Msg("error stopping server")
		}

		return err
	})

	return g.Wait()
}
