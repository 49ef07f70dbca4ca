package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"scrimbot/config"
	"scrimbot/events"
	"scrimbot/handler"
	"scrimbot/log"
	"scrimbot/store"
)

func main() {
	flag.Parse()
	log.EnsureLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Logger.Fatal("failed loading configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Logger.Fatal("failed connecting to database", zap.Error(err))
	}

	st := store.New(client)
	if err := st.EnsureIndexes(ctx); err != nil {
		log.Logger.Fatal("failed ensuring indexes", zap.Error(err))
	}
	if err := st.MigrateRosters(ctx); err != nil {
		log.Logger.Fatal("failed migrating rosters", zap.Error(err))
	}

	var bus *events.Bus
	if cfg.RabbitMQConnString != "" {
		bus, err = events.Dial(cfg.RabbitMQConnString)
		if err != nil {
			log.Logger.Fatal("failed connecting to queue", zap.Error(err))
		}
		defer bus.Close()
	}

	bot, err := handler.New(cfg, st, bus)
	if err != nil {
		log.Logger.Fatal("failed creating bot", zap.Error(err))
	}

	if err := bot.Start(); err != nil {
		log.Logger.Fatal("failed starting bot", zap.Error(err))
	}
	log.Logger.Info("bot is running, press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Logger.Info("shutting down")
	if err := bot.Stop(); err != nil {
		log.Logger.Error("failed closing gateway", zap.Error(err))
	}
}
