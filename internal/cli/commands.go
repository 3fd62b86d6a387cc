package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/discordops/auth"
)

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show shared rate-limit and circuit breaker state",
		Long: `Show the rate-limit snapshot and circuit breaker state.

State is read from the configured store; without redis.addr every
process starts empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			s := stats{
				Blocked:   rt.client.Tracker().ShouldBlock(ctx),
				RateLimit: rt.service.RateLimitStats(ctx),
				Breaker:   newBreakerView(rt.client.Breaker().Metrics(ctx)),
			}
			if a.output == formatJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			renderStats(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func (a *app) resetCommand() *cobra.Command {
	var breakerOnly, rateLimitOnly bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear shared rate-limit and circuit breaker state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if breakerOnly && rateLimitOnly {
				return errors.New("--breaker and --rate-limit are mutually exclusive")
			}
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			if !rateLimitOnly {
				rt.client.Breaker().Reset(ctx)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "circuit breaker reset")
			}
			if !breakerOnly {
				if err := rt.client.Tracker().Reset(ctx); err != nil {
					return fmt.Errorf("reset rate limit state: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "rate limit state reset")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&breakerOnly, "breaker", false, "reset only the circuit breaker")
	cmd.Flags().BoolVar(&rateLimitOnly, "rate-limit", false, "reset only the rate-limit state")
	return cmd
}

func (a *app) guildsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "guilds",
		Short: "List the guilds the bot belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			guilds, err := rt.service.BotGuilds(ctx)
			if err != nil {
				return err
			}
			if a.output == formatJSON {
				return writeJSON(cmd.OutOrStdout(), guilds)
			}
			renderGuilds(cmd.OutOrStdout(), guilds)
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the bot user the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			user, err := rt.client.CurrentUser(ctx)
			if err != nil {
				return err
			}
			if a.output == formatJSON {
				return writeJSON(cmd.OutOrStdout(), user)
			}
			renderUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func (a *app) tokenCommand() *cobra.Command {
	var (
		principal string
		roles     []string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for the ops HTTP surface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if principal == "" {
				return errors.New("--principal is required")
			}
			issuer, err := auth.NewJWTAuthenticator(auth.JWTConfig{
				Secret: []byte(a.cfg.Server.JWTSecret),
				Issuer: a.cfg.Server.JWTIssuer,
			})
			if err != nil {
				return fmt.Errorf("server.jwt_secret: %w", err)
			}
			tok, err := issuer.Issue(principal, roles, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "subject of the token")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role to grant (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
