// main.go
package main

import (
	"context"
	"log"

	"academy-booking/cmd"
	"academy-booking/internal/data/repository"
	"academy-booking/internal/wire"
	"academy-booking/pkg/database"
	"academy-booking/pkg/queue"
	"academy-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to the message broker
	publisher, err := queue.NewPublisher(config.Queue.URL, config.Queue.Exchange)
	if err != nil {
		logger.Fatal("Failed to connect publisher to broker", zap.Error(err))
	}
	defer publisher.Close()

	consumer, err := queue.NewConsumer(config.Queue.URL, config.Queue.Exchange, config.Queue.PayoutQueue, config.Queue.Concurrency)
	if err != nil {
		logger.Fatal("Failed to connect consumer to broker", zap.Error(err))
	}
	defer consumer.Close()

	logger.Info("Message broker connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, publisher, consumer, config, logger)

	// Start payout worker pool
	if err := app.Worker.Run(context.Background()); err != nil {
		logger.Fatal("Failed to start payout worker", zap.Error(err))
	}

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
