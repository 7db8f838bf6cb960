package scan

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"osintscan/cmd/osintscan/app"
	"osintscan/internal/dao"
	"osintscan/internal/models"
	output "osintscan/pkg/io_utils"
	"osintscan/pkg/logger"
	"osintscan/pkg/tools"
)

// Config holds the flags of the scan command.
type Config struct {
	Domain    string
	Format    string
	OutputDir string
	Disabled  map[string]*bool
}

// disableFlags maps --no-<flag> to the tool family it switches off.
var disableFlags = []struct {
	flag string
	tool string
	help string
}{
	{"subdomain-enum", tools.NameDNSProbe, "Skip DNS prefix probing"},
	{"passive-enum", tools.NameAmass, "Skip passive enumeration with amass"},
	{"harvester", tools.NameTheHarvester, "Skip theHarvester"},
	{"whois", tools.NameWhois, "Skip WHOIS email extraction"},
	{"ip-resolve", tools.NameIPResolve, "Skip apex, MX and NS resolution"},
	{"social", tools.NameSocial, "Skip social profile scraping"},
}

// Selection turns the --no-* flags into a tool selection.
func (c *Config) Selection() *tools.Selection {
	off := func(name string) *bool {
		if p := c.Disabled[name]; p != nil && *p {
			return tools.Bool(false)
		}
		return nil
	}
	return &tools.Selection{
		UseSubdomainEnum: off(tools.NameDNSProbe),
		UsePassiveEnum:   off(tools.NameAmass),
		UseHarvester:     off(tools.NameTheHarvester),
		UseWhois:         off(tools.NameWhois),
		UseIPResolve:     off(tools.NameIPResolve),
		UseSocialScan:    off(tools.NameSocial),
	}
}

// NewScanCommand runs a single scan in memory and prints the final record.
func NewScanCommand(global *app.Options) *cobra.Command {
	config := &Config{Disabled: map[string]*bool{}}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan against a domain and print the result",
		Long:  `Run every enabled tool against the domain, wait for all of them and print the merged findings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := output.ValidateFormat(config.Format); err != nil {
				return err
			}

			a, err := app.New(global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scan, err := runOnce(ctx, a, config)
			if err != nil {
				return err
			}

			if err := output.Render(cmd.OutOrStdout(), config.Format, scan); err != nil {
				return err
			}
			if config.OutputDir != "" {
				path, err := output.SaveReport(config.OutputDir, config.Format, scan)
				if err != nil {
					return err
				}
				a.Logger.WithFields(logger.Fields{"path": path}).Info("Report saved")
			}

			if scan.Status == models.StatusFailed {
				return fmt.Errorf("scan failed: %s", scan.ErrorMessage)
			}
			return nil
		},
	}

	scanCmd.Flags().StringVarP(&config.Domain, "domain", "d", "", "Target domain for scanning (required)")
	scanCmd.Flags().StringVarP(&config.Format, "format", "f", output.FormatTable, "Output format: table, json or yaml")
	scanCmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", "", "Also save the report into this directory")
	for _, f := range disableFlags {
		config.Disabled[f.tool] = scanCmd.Flags().Bool("no-"+f.flag, false, f.help)
	}

	_ = scanCmd.MarkFlagRequired("domain")

	return scanCmd
}

func runOnce(ctx context.Context, a *app.App, config *Config) (*models.ScanRecord, error) {
	svc := a.NewScanService(dao.NewMemoryScanDAO(), a.NewFactory())
	return svc.RunOnce(ctx, config.Domain, config.Selection())
}
