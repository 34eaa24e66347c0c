package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/value_objects"
	"access-system/infrastructure/rabbitmq"
	"access-system/utils/gpooling"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the periodic sweeps and the queue consumers until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if e.config.Job {
				jobs := e.config.Jobs
				loops := []struct {
					name     string
					interval time.Duration
					run      func(ctx context.Context) value_objects.SweepReport
				}{
					{name: "expire_access", interval: seconds(jobs.ExpireIntervalSeconds), run: e.app.JobExpireAccess},
					{name: "notify_expiring", interval: seconds(jobs.NotifyIntervalSeconds), run: e.app.JobNotifyExpiringAccess},
					{name: "expire_pending_pix", interval: seconds(jobs.PixIntervalSeconds), run: e.app.JobExpirePendingPix},
					{name: "poll_pending", interval: seconds(jobs.PollIntervalSeconds), run: e.app.PollPendingPayments},
				}
				for _, l := range loops {
					if err := every(ctx, e.pool, l.interval, l.run); err != nil {
						return err
					}
					e.logger.Info("job_scheduled", zap.String("job", l.name), zap.Duration("interval", l.interval))
				}
			}

			if e.config.QueueUri != "" {
				queue, err := e.queue()
				if err != nil {
					return err
				}
				defer queue.Connection.Close()

				parsers := make(map[string]rabbitmq.WebhookParser)
				for name, gateway := range e.app.Gateways {
					if parser, ok := gateway.(rabbitmq.WebhookParser); ok {
						parsers[name] = parser
					}
				}
				consumer := rabbitmq.NewWebhookConsumer(e.app, parsers, e.config.Jobs.ItemTimeout(), e.logger)
				if err := queue.WithConsumerQueue(ctx, constants.QueueGatewayWebhook, consumer.Handle); err != nil {
					return err
				}
				e.logger.Info("webhook_consumer_started", zap.String("queue", constants.QueueGatewayWebhook))

				joins := rabbitmq.NewChatMemberConsumer(e.app, e.config.Jobs.ItemTimeout(), e.logger)
				if err := queue.WithConsumerQueue(ctx, constants.QueueChatMember, joins.Handle); err != nil {
					return err
				}
				e.logger.Info("chat_member_consumer_started", zap.String("queue", constants.QueueChatMember))
			}

			if ids := e.config.Telegram.JoinListenerBots; len(ids) > 0 {
				listener, ok := e.app.Messenger.(joinListener)
				if !ok {
					return errors.New("messenger cannot poll chat member updates")
				}
				bots := make([]*entities.Bot, 0, len(ids))
				for _, id := range ids {
					bot, err := e.app.Catalog.FindBot(ctx, id)
					if err != nil {
						return fmt.Errorf("join listener bot %s: %w", id, err)
					}
					bots = append(bots, bot)
				}
				interval := seconds(e.config.Telegram.JoinPollSeconds)
				if err := listenForJoins(ctx, e.pool, listener, e.app, bots, interval, e.logger); err != nil {
					return err
				}
				e.logger.Info("join_listeners_started", zap.Strings("bots", ids), zap.Duration("interval", interval))
			}

			<-ctx.Done()
			e.logger.Warn("shutting down engine...")
			return nil
		},
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// every runs job on a pool worker at each tick until ctx is done. A run that
// outlasts the interval delays the next tick instead of overlapping it.
func every(ctx context.Context, pool gpooling.IPool, interval time.Duration, job func(ctx context.Context) value_objects.SweepReport) error {
	if interval <= 0 {
		return nil
	}
	return pool.Submit(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job(ctx)
			}
		}
	})
}

type joinListener interface {
	ListenChatMembers(ctx context.Context, bot entities.Bot, interval time.Duration, onJoin func(ctx context.Context, link string)) error
}

// listenForJoins polls the chat_member updates of each bot on its own pool
// worker and counts every join through an invite link.
func listenForJoins(ctx context.Context, pool gpooling.IPool, listener joinListener, recorder rabbitmq.JoinRecorder, bots []*entities.Bot, interval time.Duration, logger *zap.Logger) error {
	if interval <= 0 {
		return nil
	}
	for _, b := range bots {
		bot := *b
		err := pool.Submit(func() {
			err := listener.ListenChatMembers(ctx, bot, interval, func(ctx context.Context, link string) {
				if err := recorder.RecordInviteLinkJoin(ctx, bot.ID, link); err != nil {
					logger.Warn("invite_link_join_lost", zap.String("bot_id", bot.ID), zap.Error(err))
				}
			})
			if err != nil {
				logger.Error("join_listener_err", zap.String("bot_id", bot.ID), zap.Error(err))
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
