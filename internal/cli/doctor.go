package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/config"
	"github.com/example/presidium/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the presidium home, config and database",
		Long: `Health check for a presidium installation.

Validates:
- Home directory ($PRESIDIUM_HOME or ~/.presidium)
- config.yaml parses and passes validation
- Database opens and its schema is current
- Committees exist and have rosters
- A default actor identity is configured

Examples:
  presidium doctor              # Run full health check
  presidium doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := config.HomeDir()
			if err != nil {
				return err
			}
			results := runChecks(home)

			if !quiet {
				printChecks(cmd.OutOrStdout(), results)
			}
			if hasFailures(results) {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// runChecks runs every check against the given home directory. Checks that
// depend on a failed one are skipped.
func runChecks(home string) []CheckResult {
	results := []CheckResult{checkHome(home)}

	cfg, cfgResult := checkConfig(home)
	results = append(results, cfgResult)
	if cfg == nil {
		return results
	}
	results = append(results, checkActor(cfg))

	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		return append(results, CheckResult{
			Name:    "Database",
			Status:  "✗",
			Details: fmt.Sprintf("  %s not found\n  Run: presidium init", cfg.DatabasePath),
		})
	}
	conn, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return append(results, CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()})
	}
	defer conn.Close()

	results = append(results, checkSchema(conn))
	results = append(results, checkCommittees(conn))
	return results
}

func checkHome(home string) CheckResult {
	info, err := os.Stat(home)
	if err != nil {
		return CheckResult{Name: "Home", Status: "✗", Details: fmt.Sprintf("  %s missing\n  Run: presidium init", home)}
	}
	if !info.IsDir() {
		return CheckResult{Name: "Home", Status: "✗", Details: fmt.Sprintf("  %s is not a directory", home)}
	}
	return CheckResult{Name: "Home", Status: "✓"}
}

func checkConfig(home string) (*config.Config, CheckResult) {
	cfg, err := config.LoadConfig(home)
	if err != nil {
		return nil, CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}
	return cfg, CheckResult{Name: "Config", Status: "✓"}
}

func checkActor(cfg *config.Config) CheckResult {
	if cfg.ActorEmail == "" && cfg.ActorID == "" {
		return CheckResult{
			Name:    "Actor",
			Status:  "⚠",
			Details: "  No default identity; every mutating command needs --email\n  Set actor_email in config.yaml",
		}
	}
	return CheckResult{Name: "Actor", Status: "✓"}
}

func checkSchema(conn *sql.DB) CheckResult {
	applied, err := db.AppliedVersion(conn)
	if err != nil {
		return CheckResult{Name: "Schema", Status: "✗", Details: "  " + err.Error()}
	}
	if want := db.SchemaVersion(); applied < want {
		return CheckResult{
			Name:    "Schema",
			Status:  "⚠",
			Details: fmt.Sprintf("  At version %d, current is %d\n  Pending migrations run on the next command", applied, want),
		}
	}
	return CheckResult{Name: "Schema", Status: "✓"}
}

func checkCommittees(conn *sql.DB) CheckResult {
	rows, err := conn.Query(`SELECT c.id, COUNT(cc.name)
		FROM committees c LEFT JOIN committee_countries cc ON cc.committee_id = c.id
		GROUP BY c.id ORDER BY c.id`)
	if err != nil {
		return CheckResult{Name: "Committees", Status: "✗", Details: "  " + err.Error()}
	}
	defer rows.Close()

	total := 0
	details := ""
	for rows.Next() {
		var id string
		var countries int
		if err := rows.Scan(&id, &countries); err != nil {
			return CheckResult{Name: "Committees", Status: "✗", Details: "  " + err.Error()}
		}
		total++
		if countries == 0 {
			details += fmt.Sprintf("  %s has an empty roster\n", id)
		}
	}
	if err := rows.Err(); err != nil {
		return CheckResult{Name: "Committees", Status: "✗", Details: "  " + err.Error()}
	}

	switch {
	case total == 0:
		return CheckResult{Name: "Committees", Status: "⚠", Details: "  None yet\n  Run: presidium committee create, or presidium init --seed"}
	case details != "":
		return CheckResult{Name: "Committees", Status: "⚠", Details: details + "  Run: presidium committee add-country"}
	}
	return CheckResult{Name: "Committees", Status: "✓"}
}

func hasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == "✗" {
			return true
		}
	}
	return false
}

func printChecks(out io.Writer, results []CheckResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
	}
	fmt.Fprintln(out)

	hasDetails := false
	for _, r := range results {
		if r.Status != "✓" && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasFailures(results) {
		fmt.Fprintln(out, "\n⚠ Issues found.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}
