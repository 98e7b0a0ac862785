package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hargabyte/cfx/internal/config"
	"github.com/hargabyte/cfx/internal/extract"
	"github.com/hargabyte/cfx/internal/facts"
	"github.com/hargabyte/cfx/internal/store"
)

var (
	extractDecls     string
	extractEnums     string
	extractRelations string
	extractIndex     bool
	extractWorkers   int
)

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract declaration, enum and relation facts from sources",
	Long: `Extract parses every supported source file under the given paths and
appends one JSON line per discovered fact to the configured output files.
Output paths come from .cfx/config.yaml and can be overridden per run with
the --decls, --enums and --relations flags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractDecls, "decls", "", "Declaration facts output path")
	extractCmd.Flags().StringVar(&extractEnums, "enums", "", "Enum facts output path")
	extractCmd.Flags().StringVar(&extractRelations, "relations", "", "Relation facts output path")
	extractCmd.Flags().BoolVar(&extractIndex, "index", false, "Mirror facts into the .cfx/facts.db index")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "Concurrent extraction workers (0 = one per CPU)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	targets := extract.Targets{
		Declarations: cfg.Outputs.Declarations,
		Enums:        cfg.Outputs.Enums,
		Relations:    cfg.Outputs.Relations,
	}
	overrideTargets(cmd.Flags(), &targets)

	session := facts.NewSession()

	if extractIndex || cfg.Index.Enabled {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		session.SetIndexer(st)
	}

	opts := extract.Options{
		Targets: targets,
		Exclude: cfg.Scan.Exclude,
		Workers: extractWorkers,
	}
	if opts.Workers == 0 {
		opts.Workers = cfg.Scan.Workers
	}
	if verbose {
		opts.Progress = os.Stderr
	}

	n, err := extract.Run(session, args, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "extracted facts from %d files\n", n)
	return nil
}

// overrideTargets applies output path flags over the configured targets,
// touching only flags the user explicitly set.
func overrideTargets(fs *pflag.FlagSet, targets *extract.Targets) {
	if fs.Changed("decls") {
		targets.Declarations = extractDecls
	}
	if fs.Changed("enums") {
		targets.Enums = extractEnums
	}
	if fs.Changed("relations") {
		targets.Relations = extractRelations
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return config.Load(cwd)
}

// openStore opens the fact index in the nearest .cfx directory, creating
// one in the current directory when none exists.
func openStore() (*store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	dir, err := config.FindConfigDir(cwd)
	if err != nil {
		dir = filepath.Join(cwd, config.ConfigDirName)
	}
	return store.Open(dir)
}
