package scan

import (
	"github.com/spf13/cobra"

	"osintscan/cmd/osintscan/app"
	"osintscan/internal/dao"
	output "osintscan/pkg/io_utils"
)

// NewScansCommand groups the commands that read stored scans.
func NewScansCommand(global *app.Options) *cobra.Command {
	var format string

	scansCmd := &cobra.Command{
		Use:   "scans",
		Short: "Inspect scans stored in the configured database",
	}
	scansCmd.PersistentFlags().StringVarP(&format, "format", "f", output.FormatTable, "Output format: table, json or yaml")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withStore(cmd, global, format, func(store dao.ScanDAO) error {
				scans, err := store.ListScans()
				if err != nil {
					return err
				}
				return output.RenderList(cmd.OutOrStdout(), format, scans)
			})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <scan-id>",
		Short: "Show one scan with its findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withStore(cmd, global, format, func(store dao.ScanDAO) error {
				scan, err := store.GetScanByUUID(args[0])
				if err != nil {
					return err
				}
				return output.Render(cmd.OutOrStdout(), format, scan)
			})
		},
	}

	scansCmd.AddCommand(listCmd, getCmd)
	return scansCmd
}

func withStore(cmd *cobra.Command, global *app.Options, format string, fn func(dao.ScanDAO) error) error {
	if err := output.ValidateFormat(format); err != nil {
		return err
	}
	a, err := app.New(global, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	store, closeStore, err := a.OpenStore()
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(store)
}
