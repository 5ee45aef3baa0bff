package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/poller"
)

const (
	flagInterval = "interval"
	flagCount    = "count"
)

type refresher interface {
	RequestRefresh() bool
}

func watchCommand(opts *rootOptions) *cobra.Command {
	var (
		interval time.Duration
		count    int
		columns  []string
	)
	display, attachFlags := SetupDisplay(formatTable, OutputFormatter[domainreplicas.StateResponse]{
		Name: formatTable,
		AttachFlags: func(cmd *cobra.Command) {
			cmd.Flags().StringSliceVarP(&columns, flagColumns, "c", defaultColumns, "Columns to display in table output")
		},
		Fn: func(_ *cobra.Command, st domainreplicas.StateResponse) (string, error) {
			return renderState(st, columns)
		},
	})

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the replicas and print every state change; press enter to refresh now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			p := poller.New(opts.provider(), nil, opts.logger(cmd), nil, interval)
			states, unsubscribe := p.Subscribe()
			defer func() {
				unsubscribe()
				_ = p.Stop(context.Background())
			}()
			p.Start(ctx)
			go readRefreshRequests(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), p)

			rendered := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case st, ok := <-states:
					if !ok {
						return nil
					}
					if err := display(cmd, st.Response()); err != nil {
						return err
					}
					rendered++
					if count > 0 && rendered >= count {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, flagInterval, 5*time.Second, "Delay between the end of one fetch and the next")
	cmd.Flags().IntVar(&count, flagCount, 0, "Exit after printing this many states (0 runs until interrupted)")
	attachFlags(cmd)
	return cmd
}

// renderState prints a one-line summary followed by the replica table.
func renderState(st domainreplicas.StateResponse, columns []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "status: %s  replicas: %d  unhealthy: %d",
		st.Status, len(st.Replicas), domainreplicas.CountUnhealthy(st.Replicas))
	if st.LastError != "" {
		fmt.Fprintf(&b, "  last error: %s", st.LastError)
	}
	if len(st.Replicas) == 0 {
		return b.String(), nil
	}
	tbl, err := DisplayTable(st.Replicas, "hostname", columns)
	if err != nil {
		return "", err
	}
	b.WriteString("\n")
	b.WriteString(tbl)
	return b.String(), nil
}

// readRefreshRequests asks for a refresh on every input line until in ends or ctx is done.
func readRefreshRequests(ctx context.Context, in io.Reader, out io.Writer, r refresher) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if r.RequestRefresh() {
			fmt.Fprintln(out, "refresh requested")
		} else {
			fmt.Fprintln(out, "refresh already in progress")
		}
	}
}
