package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
)

var defaultColumns = []string{"hostname", "region", "relay address", "db latency", "error"}

func listCommand(opts *rootOptions) *cobra.Command {
	var columns []string
	display, attachFlags := SetupDisplay(formatTable, OutputFormatter[[]domainreplicas.Replica]{
		Name: formatTable,
		AttachFlags: func(cmd *cobra.Command) {
			cmd.Flags().StringSliceVarP(&columns, flagColumns, "c", defaultColumns, "Columns to display in table output")
		},
		Fn: func(_ *cobra.Command, list []domainreplicas.Replica) (string, error) {
			return DisplayTable(list, "hostname", columns)
		},
	})

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the replicas of the deployment once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := opts.provider().FetchReplicas(cmd.Context())
			if err != nil {
				return xerrors.Errorf("list replicas: %w", err)
			}
			if list == nil {
				list = []domainreplicas.Replica{}
			}
			return display(cmd, list)
		},
	}
	attachFlags(cmd)
	return cmd
}
