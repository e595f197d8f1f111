package cli

import (
	"fmt"
	"regexp"
	"strings"
)

// entityPrefixes maps entity types to their expected ID prefixes
var entityPrefixes = map[string]string{
	"committee": "COM",
	"session":   "SES",
	"voting":    "VOT",
}

var shortID = regexp.MustCompile(`^\d+$`)

// validateEntityID checks if an ID has the correct prefix format.
// Returns an error with helpful message if the ID appears to be a short ID.
func validateEntityID(id, entityType string) error {
	if id == "" {
		return nil // required-ness is checked by the command
	}

	prefix, ok := entityPrefixes[entityType]
	if !ok {
		return nil
	}

	expectedPattern := prefix + "-"
	if strings.HasPrefix(id, expectedPattern) {
		return nil
	}

	if shortID.MatchString(id) {
		return fmt.Errorf("invalid %s ID '%s'. Use full ID format: %s-%03s", entityType, id, prefix, id)
	}

	if strings.HasPrefix(strings.ToUpper(id), expectedPattern) {
		return fmt.Errorf("invalid %s ID '%s'. IDs are case-sensitive, use: %s", entityType, id, strings.ToUpper(id))
	}

	return fmt.Errorf("invalid %s ID '%s'. Expected format: %s-001", entityType, id, prefix)
}
