package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"access-system/application"
	"access-system/domain/constants"
	"access-system/domain/value_objects"
)

type sweepFunc func(app *application.AccessApplication) func(ctx context.Context) value_objects.SweepReport

var sweeps = map[string]sweepFunc{
	"expire": func(app *application.AccessApplication) func(ctx context.Context) value_objects.SweepReport {
		return app.JobExpireAccess
	},
	"notify": func(app *application.AccessApplication) func(ctx context.Context) value_objects.SweepReport {
		return app.JobNotifyExpiringAccess
	},
	"pix": func(app *application.AccessApplication) func(ctx context.Context) value_objects.SweepReport {
		return app.JobExpirePendingPix
	},
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sweep [expire|notify|pix]",
		Short:     "Run one sweep once and print its report",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"expire", "notify", "pix"},
		RunE: func(cmd *cobra.Command, args []string) error {
			pick, ok := sweeps[args[0]]
			if !ok {
				return fmt.Errorf("unknown sweep %q", args[0])
			}
			return runOnce(cmd.Context(), pick)
		},
	}
}

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Refresh every pending transaction from its gateway once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), func(app *application.AccessApplication) func(ctx context.Context) value_objects.SweepReport {
				return app.PollPendingPayments
			})
		},
	}
}

func runOnce(ctx context.Context, pick sweepFunc) error {
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	return printJSON(pick(e.app)(ctx))
}

func webhookCmd() *cobra.Command {
	var enqueue bool
	cmd := &cobra.Command{
		Use:   "webhook [gateway] [payment-id]",
		Short: "Apply a gateway callback by hand",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if enqueue {
				if e.config.QueueUri == "" {
					return errors.New("queue_uri is not configured")
				}
				queue, err := e.queue()
				if err != nil {
					return err
				}
				defer queue.Connection.Close()

				hook := value_objects.GatewayWebhook{Gateway: args[0], PaymentID: args[1]}
				if err := queue.PublishWebhook(constants.QueueGatewayWebhook, hook); err != nil {
					return err
				}
				fmt.Printf("queued %s payment %s\n", args[0], args[1])
				return nil
			}

			if err := e.app.HandleGatewayWebhook(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("applied %s payment %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "publish the callback on the webhook queue instead of applying it here")
	return cmd
}
