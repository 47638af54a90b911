package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yungbote/competence-ledger/internal/app"
	"github.com/yungbote/competence-ledger/internal/persistence"
)

func (c *cli) exportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored snapshot as a JSON export file",
		Long: `Writes the stored snapshot wrapped in {"exportDate", "userData"}.
By default the file is named competences_YYYY-MM-DD.json in the current
directory; --out - writes to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLedger(cmd.Context(), func(stack *app.LedgerStack) error {
				exp, err := stack.Services.Ledger.Export(cmd.Context())
				if err != nil {
					return err
				}
				if outPath == "-" {
					_, err := cmd.OutOrStdout().Write(append(exp.Body, '\n'))
					return err
				}
				path := outPath
				if path == "" {
					path = exp.FileName
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, exp.FileName)
				}
				if err := os.WriteFile(path, exp.Body, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d competencies to %s\n", len(exp.Envelope.UserData), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file or directory, - for stdout")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the stored snapshot with an export file",
		Long: `Validates an export file and replaces the stored snapshot with its
userData. A running server keeps its current levels until it is reloaded
(POST /api/reload) or restarted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader
			if args[0] == "-" {
				r = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return c.withLedger(cmd.Context(), func(stack *app.LedgerStack) error {
				res, err := stack.Services.Ledger.Import(cmd.Context(), r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d competencies. Reload the server to apply them.\n", res.Nodes)
				return nil
			})
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored level and date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("%w: pass --yes to erase all progress", persistence.ErrResetNotConfirmed)
			}
			return c.withLedger(cmd.Context(), func(stack *app.LedgerStack) error {
				if err := stack.Services.Ledger.Reset(cmd.Context(), true); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All progress erased.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
