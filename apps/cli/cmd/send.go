package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/restkit/packages/api"
	"github.com/abdul-hamid-achik/restkit/packages/callfile"
	"github.com/abdul-hamid-achik/restkit/packages/history"
	"github.com/abdul-hamid-achik/restkit/packages/output"
	"github.com/abdul-hamid-achik/restkit/packages/transport"
	"github.com/abdul-hamid-achik/restkit/packages/validate"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	nameFlag     string
	tokenFlag    string
	timeoutFlag  time.Duration
	insecureFlag bool
	verboseFlag  bool
	noColorFlag  bool
	watchFlag    bool
	schemaFlag   string
	historyFlag  string
)

var sendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Send calls defined in a YAML call file",
	Long: `Send API calls defined in a YAML call file.

Examples:
  restkit send api.yaml
  restkit send api.yaml --name create-user
  restkit send api.yaml --token $API_TOKEN
  restkit send api.yaml --watch
  restkit send api.yaml --name get-user --schema user.schema.json
  restkit send api.yaml --history ~/.restkit/history.db`,
	Args: cobra.ExactArgs(1),
	RunE: sendCommand,
}

func init() {
	sendCmd.Flags().StringVar(&nameFlag, "name", "", "send only the named call")
	sendCmd.Flags().StringVar(&tokenFlag, "token", "", "override the auth token for every call")
	sendCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "request timeout (default 30s)")
	sendCmd.Flags().BoolVar(&insecureFlag, "insecure", false, "skip TLS certificate validation")
	sendCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "print error payloads")
	sendCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	sendCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-send on call file changes")
	sendCmd.Flags().StringVar(&schemaFlag, "schema", "", "validate JSON responses against this schema file")
	sendCmd.Flags().StringVar(&historyFlag, "history", "", "record calls in this SQLite database")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	formatter := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(noColorFlag),
	)

	var store *history.Store
	if historyFlag != "" {
		var err error
		store, err = history.Open(historyFlag)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	client := newClient(store)

	if !watchFlag {
		return sendFile(cmd.Context(), client, formatter, path)
	}
	return watchAndSend(cmd, client, formatter, path)
}

func newClient(store *history.Store) *api.Client {
	var transportOpts []transport.ClientOption
	if timeoutFlag > 0 {
		transportOpts = append(transportOpts, transport.WithTimeout(timeoutFlag))
	}
	if insecureFlag {
		transportOpts = append(transportOpts, transport.WithValidateSSL(false))
	}
	transportOpts = append(transportOpts, transport.WithRequestID("X-Request-ID"))

	opts := []api.Option{api.WithTransport(transport.NewClient(transportOpts...))}
	if store != nil {
		opts = append(opts, api.WithObserver(func(info api.CallInfo) {
			message := ""
			if info.Err != nil {
				message = info.Err.Error()
			}
			_ = store.Record(context.Background(), history.Entry{
				Method:     info.Method,
				URL:        info.URL,
				Status:     info.Status,
				DurationMs: info.Duration.Milliseconds(),
				OK:         info.Err == nil && info.Status >= 200 && info.Status < 300,
				Message:    message,
			})
		}))
	}
	return api.New(opts...)
}

func sendFile(ctx context.Context, client *api.Client, formatter *output.ConsoleFormatter, path string) error {
	file, err := callfile.Load(path)
	if err != nil {
		return err
	}

	calls := file.Calls
	if nameFlag != "" {
		call, ok := file.Find(nameFlag)
		if !ok {
			return fmt.Errorf("no call named %q in %s", nameFlag, path)
		}
		calls = []callfile.Call{call}
	}

	var failed int
	for _, call := range calls {
		spec := file.Spec(call)
		if tokenFlag != "" {
			spec.Token = tokenFlag
		}

		start := time.Now()
		value, err := client.Call(ctx, spec)
		if err != nil {
			failed++
			formatter.Failure(call.Name, err)
			continue
		}

		if schemaFlag != "" {
			if err := validate.Against(value, schemaFlag); err != nil {
				failed++
				formatter.Failure(call.Name, err)
				continue
			}
		}

		formatter.Success(call.Name, value, time.Since(start))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d calls failed", failed, len(calls))
	}
	return nil
}

func watchAndSend(cmd *cobra.Command, client *api.Client, formatter *output.ConsoleFormatter, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sendFile(ctx, client, formatter, path); err != nil {
		formatter.Failure(path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes (ctrl-c to stop)\n", path)

	var debounce *time.Timer
	resend := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case resend <- struct{}{}:
				default:
				}
			})
		case <-resend:
			if err := sendFile(ctx, client, formatter, path); err != nil {
				formatter.Failure(path, err)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", watchErr)
		}
	}
}
