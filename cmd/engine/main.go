package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"access-system/application"
	"access-system/infrastructure/rabbitmq"
	"access-system/utils/configs"
	"access-system/utils/gpooling"
	logger2 "access-system/utils/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "access-engine",
		Short:   "Turns gateway payments into Telegram group access",
		Version: Version,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(pollCmd())
	rootCmd.AddCommand(webhookCmd())
	rootCmd.AddCommand(resumeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type engine struct {
	config *configs.Config
	logger *zap.Logger
	pool   *gpooling.Pool
	app    *application.AccessApplication
}

// bootstrap loads config.json from the working directory and connects the
// engine. close releases everything bootstrap opened.
func bootstrap(ctx context.Context) (*engine, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	lg, err := logger2.NewLogger(config.ENV)
	if err != nil {
		return nil, err
	}

	pool, err := gpooling.NewPooling(config.MaxPoolSize, lg, gpooling.WithExpiry(seconds(config.PoolExpirySeconds)))
	if err != nil {
		return nil, err
	}

	app, err := application.NewAccessApplication(ctx, config, lg, pool)
	if err != nil {
		pool.Release()
		return nil, err
	}
	return &engine{config: config, logger: lg, pool: pool, app: app}, nil
}

func (e *engine) close() {
	e.app.Close()
	e.pool.Release()
	_ = e.logger.Sync()
}

func (e *engine) queue() (*rabbitmq.RabbiMQ, error) {
	opts := rabbitmq.NewOptions().WithUri(e.config.QueueUri).WithPrefetch(e.config.QueuePrefetch)
	return rabbitmq.NewRabbiMQ(*opts, e.logger, e.pool)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
