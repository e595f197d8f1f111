package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/config"
	"github.com/example/presidium/internal/db"
	"github.com/example/presidium/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var seed bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the presidium home and database",
		Long: `Initialize the presidium home ($PRESIDIUM_HOME, default ~/.presidium):
writes a default config.yaml and creates the database schema.

With --seed, a demo Security Council (COM-001) and a General Assembly
committee (COM-002) are created so a session can be opened right away.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := config.HomeDir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			cfgPath := filepath.Join(home, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", cfgPath)
			} else {
				if err := config.SaveConfig(home, config.Default(home)); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Config written to %s\n", cfgPath)
			}

			cfg, err := config.LoadConfig(home)
			if err != nil {
				return err
			}

			conn, err := db.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.InitSchema(conn, wire.NewLogger(cfg, cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Fprintf(out, "✓ Database initialized at %s\n", cfg.DatabasePath)

			if seed {
				if err := db.SeedFixtures(conn); err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ Seeded COM-001 Security Council and COM-002 General Assembly First Committee")
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  presidium committee list")
			fmt.Fprintln(out, "  presidium session create --committee COM-001 --email chair@un.test")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Create demo committees")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.yaml")

	return cmd
}
