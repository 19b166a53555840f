package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"parkrent/internal/cli"
	"parkrent/internal/core"
	"parkrent/internal/report"
	"parkrent/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "parkctl",
		Short: "Admin tool for the parking rental billing service",
	}

	rootCmd.AddCommand(newRecalcCmd(), newReportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*services.ContractService, *services.PaymentService, func()) {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	return services.NewContractService(repo, nil),
		services.NewPaymentService(repo, nil),
		func() { repo.Close() }
}

func newRecalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Rederive billing state for every contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			contracts, _, closeFn := setup()
			defer closeFn()

			n, err := contracts.RecalculateAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recalculated %d contracts\n", n)
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the financial report",
		RunE: func(cmd *cobra.Command, args []string) error {
			contractSvc, paymentSvc, closeFn := setup()
			defer closeFn()

			ctx := cmd.Context()
			contracts, err := contractSvc.ListContracts(ctx)
			if err != nil {
				return err
			}
			histories, err := paymentSvc.AllPayments(ctx)
			if err != nil {
				return err
			}

			stats := report.Build(contracts, histories, time.Now())
			out := cmd.OutOrStdout()

			if asCSV {
				return report.WriteCSV(out, stats)
			}

			fmt.Fprintf(out, "Contracts:       %d (settled %d, in debt %d)\n",
				stats.TotalContracts, stats.SettledContracts, stats.ContractsInDebt)
			fmt.Fprintf(out, "Collected:       %s VND (%d transactions)\n",
				core.GroupDigits(stats.TotalCollected), stats.TotalTransactions)
			fmt.Fprintf(out, "Outstanding:     %s VND\n", core.GroupDigits(stats.TotalDebt))
			fmt.Fprintf(out, "Potential:       %s VND (efficiency %.1f%%)\n",
				core.GroupDigits(stats.PotentialRevenue), stats.CollectionEfficiency)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "emit the sectioned CSV report")
	return cmd
}
