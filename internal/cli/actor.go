package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/config"
	"github.com/example/presidium/internal/ctxutil"
	"github.com/example/presidium/internal/wire"
)

// addActorFlags registers the identity flags every mutating command accepts.
func addActorFlags(cmd *cobra.Command) {
	cmd.Flags().String("actor", "", "Actor ID (defaults to actor_id in config)")
	cmd.Flags().String("email", "", "Actor email (defaults to actor_email in config)")
	cmd.Flags().String("country", "", "Country the actor represents (defaults to actor_country in config)")
	cmd.Flags().String("role", "", "Actor role: presidium or delegate (defaults to actor_role in config)")
}

// resolveActor merges identity flags over the configured defaults.
func resolveActor(cmd *cobra.Command, defaults *config.Config) (ctxutil.Actor, error) {
	actor := ctxutil.Actor{
		ID:      defaults.ActorID,
		Email:   defaults.ActorEmail,
		Country: defaults.ActorCountry,
		Role:    defaults.ActorRole,
	}
	for flag, field := range map[string]*string{
		"actor":   &actor.ID,
		"email":   &actor.Email,
		"country": &actor.Country,
		"role":    &actor.Role,
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*field = v
		}
	}
	actor.Email = strings.ToLower(strings.TrimSpace(actor.Email))

	if actor.Name() == "" {
		return actor, fmt.Errorf("no actor identity\nHint: pass --email (or --actor), or set actor_email in config.yaml")
	}
	if actor.Role != "" && !config.IsKnownRole(actor.Role) {
		return actor, fmt.Errorf("unknown role %q (want %s or %s)", actor.Role, config.RolePresidium, config.RoleDelegate)
	}
	return actor, nil
}

// actorContext returns the command context carrying the resolved actor.
func actorContext(cmd *cobra.Command) (context.Context, ctxutil.Actor, error) {
	actor, err := resolveActor(cmd, wire.Config())
	if err != nil {
		return nil, actor, err
	}
	return ctxutil.WithActor(cmd.Context(), actor), actor, nil
}

// chairContext is actorContext restricted to the presidium.
func chairContext(cmd *cobra.Command) (context.Context, error) {
	ctx, actor, err := actorContext(cmd)
	if err != nil {
		return nil, err
	}
	if err := requirePresidium(actor, cmd.CommandPath()); err != nil {
		return nil, err
	}
	return ctx, nil
}

func requirePresidium(actor ctxutil.Actor, action string) error {
	if actor.Role != config.RolePresidium {
		return fmt.Errorf("only the presidium can run %q (acting as %s, role %q)", action, actor.Name(), actor.Role)
	}
	return nil
}

// requireSelfOrPresidium lets delegates act only for their own country.
func requireSelfOrPresidium(actor ctxutil.Actor, country string) error {
	if actor.Role == config.RolePresidium {
		return nil
	}
	if actor.Country == "" || !strings.EqualFold(actor.Country, country) {
		return fmt.Errorf("delegates can only act for their own country (acting for %q, requested %q)", actor.Country, country)
	}
	return nil
}
