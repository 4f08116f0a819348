package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"careops/api"
	"careops/application"
	"careops/config"
	"careops/database"
	"careops/domain/interfaces"
	"careops/infrastructure"
	"careops/infrastructure/observability"
)

// Run initializes and starts the service
func Run(ctx context.Context) error {
	log.Println("Starting careops service...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize the event backbone. An empty NATS_SERVERS runs the service
	// without it; state changes still commit, events are dropped and the
	// dispatcher falls back to its sweep.
	var (
		natsClient     *infrastructure.NATSClient
		eventPublisher interfaces.EventPublisher
	)
	if cfg.NATSServers != "" {
		log.Println("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher := infrastructure.NewNATSEventPublisher(natsClient)
		if err := publisher.EnsureDomainEventStream(); err != nil {
			return fmt.Errorf("failed to ensure domain event stream: %w", err)
		}
		eventPublisher = publisher
		log.Println("NATS connection established successfully")
	} else {
		log.Println("NATS disabled, domain events will be dropped")
		eventPublisher = infrastructure.NewNoopEventPublisher()
	}

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, eventPublisher)

	// Initialize mailer
	var mailer interfaces.Mailer
	if cfg.MailerBaseURL != "" {
		mailer = infrastructure.NewHTTPMailer(cfg.MailerBaseURL, cfg.MailerAPIKey, cfg.MailerFrom)
		log.Println("Mailer configured for outbound delivery")
	} else {
		mailer = infrastructure.NewLogMailer()
		log.Println("No mailer configured, notifications will be logged only")
	}

	// Start the notification dispatcher: event-driven delivery plus a
	// periodic sweep for anything the event path missed
	dispatcher := application.NewNotificationDispatcher(uowFactory, mailer,
		time.Duration(cfg.DispatcherIntervalSeconds)*time.Second)
	if natsClient != nil {
		subscriber := infrastructure.NewNATSEventSubscriber(natsClient)
		if err := dispatcher.RegisterSubscriptions(subscriber); err != nil {
			return fmt.Errorf("failed to register event subscriptions: %w", err)
		}
	}
	stopDispatcher := dispatcher.Start(ctx)
	defer stopDispatcher()

	// Start the automation scheduler
	if cfg.SchedulerEnabled {
		worker := application.NewAutomationWorker(uowFactory,
			time.Duration(cfg.SchedulerIntervalSeconds)*time.Second)
		stopWorker := worker.Start(ctx)
		defer stopWorker()
	} else {
		log.Println("Scheduler disabled, automations run only on demand")
	}

	// Start the lease reminder worker
	leaseWorker := application.NewLeaseReminderWorker(uowFactory,
		time.Duration(cfg.LeaseReminderDays)*24*time.Hour,
		time.Duration(cfg.LeaseReminderIntervalHours)*time.Hour)
	stopLeaseWorker := leaseWorker.Start(ctx)
	defer stopLeaseWorker()

	// Run the HTTP API until the context is cancelled
	server := api.NewServer(cfg, db, natsClient, uowFactory)
	log.Printf("Service is running in %s mode on %s...", cfg.Environment, cfg.HTTPAddr)
	serveErr := server.Start(ctx)

	// Cleanup resources
	log.Println("Shutting down service...")

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	if serveErr != nil {
		return serveErr
	}
	log.Println("Shutdown completed")
	return nil
}
