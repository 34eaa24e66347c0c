package main

import (
	"github.com/spf13/cobra"

	"access-system/application"
)

func resumeCmd() *cobra.Command {
	var req application.CreatePaymentRequest
	cmd := &cobra.Command{
		Use:   "resume [transaction-id]",
		Short: "Submit a pending transaction the gateway never answered for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			tx, err := e.app.ResumePayment(ctx, args[0], req)
			if err != nil {
				return err
			}
			return printJSON(tx)
		},
	}
	cmd.Flags().StringVar(&req.CardToken, "card-token", "", "card token for card transactions")
	cmd.Flags().StringVar(&req.TaxID, "tax-id", "", "payer tax id (CPF)")
	return cmd
}
