package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SeedFixtures populates the database with a demo committee: a fifteen-member
// security council whose five permanent members hold a veto.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().Format(time.RFC3339)

	committees := []struct {
		id, name     string
		minCoalition int
	}{
		{"COM-001", "Security Council", 3},
		{"COM-002", "General Assembly First Committee", 5},
	}
	for _, c := range committees {
		if _, err := database.Exec(
			"INSERT INTO committees (id, name, min_coalition_size, created_at) VALUES (?, ?, ?, ?)",
			c.id, c.name, c.minCoalition, now,
		); err != nil {
			return fmt.Errorf("seed committees: %w", err)
		}
	}

	permanent := map[string]bool{
		"China": true, "France": true, "Russian Federation": true,
		"United Kingdom": true, "United States": true,
	}
	council := []string{
		"Algeria", "China", "Ecuador", "France", "Guyana",
		"Japan", "Malta", "Mozambique", "Republic of Korea", "Russian Federation",
		"Sierra Leone", "Slovenia", "Switzerland", "United Kingdom", "United States",
	}
	for i, name := range council {
		if err := seedCountry(database, "COM-001", name, permanent[name], i+1); err != nil {
			return err
		}
	}

	assembly := []string{"Brazil", "Côte d'Ivoire", "Germany", "India", "Kenya", "Mexico", "Norway"}
	for i, name := range assembly {
		if err := seedCountry(database, "COM-002", name, false, i+1); err != nil {
			return err
		}
	}

	return nil
}

func seedCountry(database *sql.DB, committeeID, name string, veto bool, position int) error {
	email := strings.ToLower(strings.NewReplacer(" ", ".", "'", "", "ô", "o").Replace(name)) + "@un.test"
	if _, err := database.Exec(
		"INSERT INTO committee_countries (committee_id, name, email, has_veto_right, position) VALUES (?, ?, ?, ?, ?)",
		committeeID, name, email, veto, position,
	); err != nil {
		return fmt.Errorf("seed committee_countries: %w", err)
	}
	return nil
}
