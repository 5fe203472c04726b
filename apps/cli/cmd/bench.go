package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/restkit/packages/api"
	"github.com/abdul-hamid-achik/restkit/packages/bench"
	"github.com/abdul-hamid-achik/restkit/packages/callfile"
	"github.com/abdul-hamid-achik/restkit/packages/output"
	"github.com/abdul-hamid-achik/restkit/packages/request"
	"github.com/abdul-hamid-achik/restkit/packages/transport"
	"github.com/spf13/cobra"
)

var (
	benchNameFlag     string
	benchCountFlag    int
	benchRateFlag     float64
	benchTimeoutFlag  time.Duration
	benchNoColorFlag  bool
	benchInsecureFlag bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <file>",
	Short: "Repeat a call and report latency percentiles",
	Long: `Send one call from a YAML call file repeatedly and report latency
percentiles.

Examples:
  restkit bench api.yaml --name get-user -n 100
  restkit bench api.yaml --name get-user -n 500 --rate 50`,
	Args: cobra.ExactArgs(1),
	RunE: benchCommand,
}

func init() {
	benchCmd.Flags().StringVar(&benchNameFlag, "name", "", "call to bench (default: first call in the file)")
	benchCmd.Flags().IntVarP(&benchCountFlag, "count", "n", 100, "number of attempts")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "target attempts per second (0 = unpaced)")
	benchCmd.Flags().DurationVar(&benchTimeoutFlag, "timeout", 0, "request timeout (default 30s)")
	benchCmd.Flags().BoolVar(&benchNoColorFlag, "no-color", false, "disable colored output")
	benchCmd.Flags().BoolVar(&benchInsecureFlag, "insecure", false, "skip TLS certificate validation")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	file, err := callfile.Load(args[0])
	if err != nil {
		return err
	}

	call := file.Calls[0]
	if benchNameFlag != "" {
		var ok bool
		call, ok = file.Find(benchNameFlag)
		if !ok {
			return fmt.Errorf("no call named %q in %s", benchNameFlag, args[0])
		}
	}
	spec := file.Spec(call)

	var transportOpts []transport.ClientOption
	if benchTimeoutFlag > 0 {
		transportOpts = append(transportOpts, transport.WithTimeout(benchTimeoutFlag))
	}
	if benchInsecureFlag {
		transportOpts = append(transportOpts, transport.WithValidateSSL(false))
	}
	client := api.New(api.WithTransport(transport.NewClient(transportOpts...)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Benching %s: %d attempts", call.Name, benchCountFlag)
	if benchRateFlag > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " at %.0f/s", benchRateFlag)
	}
	fmt.Fprintln(cmd.OutOrStdout())

	summary, runErr := bench.Run(ctx, benchCountFlag, benchRateFlag, benchAttempt(client, spec))

	formatter := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithNoColor(benchNoColorFlag),
	)
	formatter.Summary(summary)

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

func benchAttempt(client *api.Client, spec request.Spec) bench.CallFunc {
	return func(ctx context.Context) (time.Duration, error) {
		start := time.Now()
		_, err := client.Call(ctx, spec)
		return time.Since(start), err
	}
}
