package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/competence-ledger/internal/app"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
	"github.com/yungbote/competence-ledger/internal/platform/shutdown"
)

// cli holds the persistent flags shared by every subcommand.
type cli struct {
	storeMode    string
	taxonomyPath string
	dataDir      string
	sqlitePath   string
	redisAddr    string
	storeKey     string
	verbose      bool

	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect and edit the competency ledger from a terminal",
		Long: `ledgerctl opens the same store the ledger server uses and runs one
operation against it: show levels, step a competency up or down, list the
achievement history, or move the whole snapshot in and out as JSON.

Settings come from the same environment variables as the server
(LEDGER_STORE_MODE, LEDGER_FILE_DIR, LEDGER_TAXONOMY_PATH, REDIS_ADDR, ...);
flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode := "test"
			if c.verbose {
				mode = "development"
			}
			log, err := logger.New(mode)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				c.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.storeMode, "store", "", "store backend: memory, file, sqlite, postgres or redis")
	flags.StringVar(&c.taxonomyPath, "taxonomy", "", "taxonomy file (YAML or JSON); empty uses the built-in tree")
	flags.StringVar(&c.dataDir, "data-dir", "", "directory for the file store")
	flags.StringVar(&c.sqlitePath, "sqlite", "", "database path for the sqlite store")
	flags.StringVar(&c.redisAddr, "redis-addr", "", "redis address for the redis store and watch")
	flags.StringVar(&c.storeKey, "key", "", "storage key of the snapshot")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		c.showCmd(),
		c.stepCmd("increase", "Raise a competency by one level"),
		c.stepCmd("decrease", "Lower a competency by one level"),
		c.historyCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.resetCmd(),
		c.watchCmd(),
	)
	return root
}

// config reads the environment and applies flag overrides.
func (c *cli) config() app.Config {
	cfg := app.LoadConfig(c.log)
	if c.storeMode != "" {
		cfg.StoreMode = c.storeMode
	}
	if c.taxonomyPath != "" {
		cfg.TaxonomyPath = c.taxonomyPath
	}
	if c.dataDir != "" {
		cfg.FileDir = c.dataDir
	}
	if c.sqlitePath != "" {
		cfg.SQLitePath = c.sqlitePath
	}
	if c.redisAddr != "" {
		cfg.RedisAddr = c.redisAddr
	}
	if c.storeKey != "" {
		cfg.StoreKey = c.storeKey
	}
	return cfg
}

// withLedger opens the store and ledger for one command and closes them after.
func (c *cli) withLedger(ctx context.Context, fn func(stack *app.LedgerStack) error) error {
	stack, err := app.OpenLedger(ctx, c.log, c.config(), nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stack.Close(); cerr != nil {
			c.log.Warn("Failed to close ledger store", "error", cerr)
		}
	}()
	return fn(stack)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
