package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harrison/repricer/internal/config"
	"github.com/harrison/repricer/internal/display"
	"github.com/harrison/repricer/internal/pricing"
	"github.com/harrison/repricer/internal/selector"
	"github.com/harrison/repricer/internal/updater"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for repricer
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repricer",
		Short: "Bulk percentage updates for pricing files",
		Long: `Repricer applies a uniform percentage change to the pricable tiers of
JSON and YAML pricing files, rounding every adjusted price up to the
next whole cent so a price is never rounded below its exact value.

Files are picked by keyword discovery in a scan directory, by explicit
path, or from an interactive menu. Configuration is loaded from
.repricer/config.yaml if present; environment variables and CLI flags
override it.

Examples:
  repricer -p 6 --keywords dog-tag            # 6% increase
  repricer -p 6% --keywords dog-tag           # 6% increase
  repricer -p=-6% --keywords dog-tag          # 6% decrease
  repricer --percent=-1.5% --keywords dog-tag # 1.5% decrease
  repricer -p 2.5 --files a.json,b.yaml       # explicit files, no discovery
  repricer -p 6 --keywords dog --all          # no confirmation prompt
  repricer -p 6 --keywords dog --list         # list matches and exit`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runRepricer,
	}

	// Add flags
	cmd.Flags().StringP("percent", "p", "", `Percentage change (e.g., "6", "6%", "-6%", "-1.5")`)
	cmd.Flags().StringSlice("files", nil, "Specific files to process (skips keyword discovery)")
	cmd.Flags().StringSlice("keywords", nil, "Keywords to match in file names (none matches every pricing file)")
	cmd.Flags().Bool("all", false, "Process all matching files without confirmation")
	cmd.Flags().Bool("list", false, "List matching files and exit")
	cmd.Flags().String("dir", "", "Directory to scan for pricing files (default from config)")
	cmd.Flags().String("label-field", "", "Row field used as the display label (default from config)")
	cmd.Flags().String("lock-timeout", "", "How long to wait for a locked file (e.g., 5s, 1m)")
	cmd.Flags().String("config", "", "Path to config file (default: .repricer/config.yaml)")
	_ = cmd.MarkFlagRequired("percent")

	return cmd
}

// runRepricer implements the root command logic
func runRepricer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p := display.NewPrinter(out)
	reader := &DefaultMenuReader{reader: bufio.NewReader(cmd.InOrStdin())}

	// Load configuration from file
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		// Load from explicit config path
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		// Load from default .repricer/config.yaml
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Environment sits between the config file and the flags
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	// Build flag pointers for merge (only non-default values)
	var dirPtr *string
	if cmd.Flags().Changed("dir") {
		dirFlag, _ := cmd.Flags().GetString("dir")
		dirPtr = &dirFlag
	}

	var labelFieldPtr *string
	if cmd.Flags().Changed("label-field") {
		labelFlag, _ := cmd.Flags().GetString("label-field")
		labelFieldPtr = &labelFlag
	}

	var lockTimeoutPtr *time.Duration
	if cmd.Flags().Changed("lock-timeout") {
		timeoutStr, _ := cmd.Flags().GetString("lock-timeout")
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid lock-timeout format %q: %w", timeoutStr, err)
		}
		lockTimeoutPtr = &timeout
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(dirPtr, labelFieldPtr, lockTimeoutPtr)

	// Validate merged configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Parse the percentage before looking at any file
	percentExpr, _ := cmd.Flags().GetString("percent")
	m, err := pricing.ParsePercent(percentExpr)
	if err != nil {
		return err
	}

	filesFlag, _ := cmd.Flags().GetStringSlice("files")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	allFlag, _ := cmd.Flags().GetBool("all")
	listFlag, _ := cmd.Flags().GetBool("list")

	// Keyword discovery is skipped when explicit files are given,
	// except under --list, which always reports the discovered set
	var matching []string
	if len(filesFlag) == 0 || listFlag {
		if len(keywords) == 0 {
			p.Warnf("No keywords provided - this will apply to ALL pricing files in the directory!")
		}
		matching, err = selector.Discover(selector.Options{
			Dir:        cfg.ScanDir,
			Extensions: cfg.Extensions,
			Keywords:   keywords,
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", cfg.ScanDir, err)
		}
		if len(keywords) == 0 {
			p.Infof("Found %d pricing files total", len(matching))
		}
	}

	if listFlag {
		p.Header("MATCHING FILES")
		p.Infof("Found %d matching files:", len(matching))
		for _, file := range matching {
			fmt.Fprintf(out, "  • %s\n", file)
		}
		return nil
	}

	// Resolve the final target list
	var targets []string
	switch {
	case len(filesFlag) > 0:
		existing, missing := selector.FilterExisting(filesFlag)
		if len(missing) > 0 {
			warning := display.WarnSkippedFiles("Some requested files were skipped", missing)
			warning.Message = fmt.Sprintf("%d of %d paths passed to --files do not exist", len(missing), len(filesFlag))
			warning.Suggestion = "Check the paths or run with --list to see discovered files."
			warning.Display(out)
		}
		targets = existing
	case allFlag:
		targets = matching
	default:
		targets, err = PromptFileSelection(p, out, matching, reader)
		if err != nil {
			return err
		}
	}

	if len(targets) == 0 {
		p.Warnf("No files selected for processing.")
		return nil
	}

	p.Subheader(fmt.Sprintf("SELECTED FILES (%d)", len(targets)))
	for _, file := range targets {
		fmt.Fprintf(out, "  ✓ %s\n", file)
	}

	// Confirm before processing
	if !allFlag && len(targets) > 1 {
		fmt.Fprintf(out, "\nProceed with updating %d files? (y/N): ", len(targets))
		confirm, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		confirm = strings.TrimSpace(strings.ToLower(confirm))
		if confirm != "y" && confirm != "yes" {
			p.Warnf("Operation cancelled.")
			return nil
		}
	}

	p.Header("PRICE UPDATE PROCESS")

	hook := updater.Hook{
		FileStart: func(path string, index, total int) {
			p.Subheader(fmt.Sprintf("Processing %s (%d/%d)", path, index, total))
		},
		FileDone: func(result *updater.FileResult) {
			reportFileResult(p, out, m, result)
		},
	}

	batch := updater.Run(targets, m, hook,
		updater.WithLabelField(cfg.LabelField),
		updater.WithLockTimeout(cfg.LockTimeout),
	)

	p.Header("PROCESS COMPLETED")
	p.Successf("Successfully processed %d files!", batch.Updated)
	if batch.Failed > 0 {
		p.Warnf("%d of %d files could not be processed.", batch.Failed, len(batch.Files))
	} else {
		fmt.Fprintf(out, "\n🎉 All price updates have been completed successfully!\n")
	}
	p.Infof("Run %s finished in %s", batch.RunID, batch.Duration.Round(time.Millisecond))

	return nil
}

// reportFileResult prints the progress block for one processed file.
// Failed files get a single ✗ line; the tier and row detail only
// renders for files that were written back.
func reportFileResult(p *display.Printer, out io.Writer, m pricing.Multiplier, result *updater.FileResult) {
	if result.Err != nil {
		p.Errorf("Failed to process %s: %v", result.Path, result.Err)
		return
	}

	p.Infof("Pricable tiers: %s", strings.Join(result.Tiers, ", "))
	p.Infof("Applying %s price change", m.PercentChange())

	for row, label := range result.RowLabels {
		fmt.Fprintf(out, "\n📊 Updating row: %s\n", label)
		for _, change := range result.Changes {
			if change.Row == row {
				p.Changef(change.From, change.To, change.Tier)
			}
		}
	}

	p.Successf("Updated %s successfully!", result.Path)
}
