package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/aether-backend/api"
	"github.com/rpupo63/aether-backend/config"
	"github.com/rpupo63/aether-backend/database"
	"github.com/rpupo63/aether-backend/errs"
)

func main() {
	envErr := godotenv.Load()

	c := config.New()
	setupLogging(c)

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Error loading .env file")
	}

	log.Info().Msg("Initializing app...")

	ctx := context.Background()

	if len(config.SSMReferences(c)) > 0 {
		if err := resolveSecrets(ctx, c); err != nil {
			log.Fatal().Err(err).Msg("Error resolving SSM parameters")
		}
	}

	currentDB := database.New(connectStore(ctx, c))

	server, err := api.NewServer(currentDB, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	// both senders may fire; buffered so neither blocks after main stops reading
	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server after %s: %v", server.Uptime().Round(time.Second), fatalErr)

	server.ShutdownGracefully(time.Duration(config.GetInt(c, "SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := currentDB.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}

// connectStore opens the configured store. It returns nil, and the server runs
// without a database, when no connection string is set or the connection fails.
func connectStore(ctx context.Context, c map[string]string) database.Store {
	dbType := strings.ToLower(config.GetString(c, "DB_TYPE", database.TypeMongo))
	log.Info().Str("dbType", dbType).Msg("Connecting to database...")

	if dbType != database.TypeMemory && !config.IsSet(c, "DATABASE_URL") {
		log.Warn().Msg("DATABASE_URL is not set, running without a database")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(config.GetInt(c, "DB_CONNECT_TIMEOUT_SECONDS", 10))*time.Second)
	defer cancel()

	store, err := database.Open(connectCtx, database.Options{
		Type:        dbType,
		URL:         config.GetString(c, "DATABASE_URL", ""),
		Name:        config.GetString(c, "DATABASE_NAME", ""),
		ReplicaURLs: config.GetList(c, "DATABASE_REPLICA_URLS", nil),
		Logger:      log.With().Str("component", "gorm").Logger(),
	})
	if err != nil {
		if errors.Is(err, errs.ErrUnsupportedStore) {
			log.Fatal().Err(err).Msg("Unsupported DB_TYPE")
		}
		log.Error().Err(err).Msg("Error connecting to database, running without one")
		return nil
	}

	log.Info().Str("database", store.Name()).Msg("Connected to database")
	return store
}

func resolveSecrets(ctx context.Context, c map[string]string) error {
	client, err := config.NewSSMClient(ctx)
	if err != nil {
		return err
	}
	return config.ResolveSSMParameters(ctx, c, client)
}

func setupLogging(c map[string]string) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(config.GetString(c, "LOG_FORMAT", "json"), "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-ch)
}
