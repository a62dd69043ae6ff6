/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	auto         bool
	bind         string
	delay        time.Duration
	high         int
	lobbyTimeout time.Duration
	low          int
	players      int
	port         int
	profile      bool
	tlsCert      string
	tlsKey       string
	verbose      bool
	webPort      int
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.webPort < 0 || c.webPort > 65535 {
		return fmt.Errorf("invalid web port (must be between 0-65535 inclusive): %d", c.webPort)
	}
	if c.players < 2 {
		return fmt.Errorf("invalid player count (must be at least 2): %d", c.players)
	}
	if c.low >= c.high {
		return fmt.Errorf("invalid secret range (--low must be less than --high): [%d, %d]", c.low, c.high)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HILO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "hilo",
		Short:         "A turn-based number guessing game, played over plain TCP or WebSockets.",
		SilenceErrors: true,
		Version:       releaseVersion,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return Serve(cmd.Context(), cfg)
		},
	}

	playCmd := &cobra.Command{
		Use:   "play <host> <port>",
		Short: "Connect to a game server as a player.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil || port < 1 || port > 65535 {
				return fmt.Errorf("invalid port: %q", args[1])
			}
			return Play(cmd.Context(), cfg, args[0], port)
		},
	}

	cmd.AddCommand(serveCmd, playCmd)

	sfs := serveCmd.Flags()

	sfs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: HILO_BIND)")
	sfs.IntVar(&cfg.high, "high", 100, "upper bound of the secret number range, inclusive (env: HILO_HIGH)")
	sfs.DurationVar(&cfg.lobbyTimeout, "lobby-timeout", 10*time.Minute, "time before unfilled sessions are abandoned, 0 to disable (env: HILO_LOBBY_TIMEOUT)")
	sfs.IntVar(&cfg.low, "low", 0, "lower bound of the secret number range, inclusive (env: HILO_LOW)")
	sfs.IntVarP(&cfg.players, "players", "n", 2, "number of players per session (env: HILO_PLAYERS)")
	sfs.IntVarP(&cfg.port, "port", "p", 5000, "port to listen on for player connections (env: HILO_PORT)")
	sfs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: HILO_PROFILE)")
	sfs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate for the web listener (env: HILO_TLS_CERT)")
	sfs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile for the web listener (env: HILO_TLS_KEY)")
	sfs.IntVar(&cfg.webPort, "web-port", 8080, "port for the web listener, 0 to disable (env: HILO_WEB_PORT)")

	pfs := playCmd.Flags()

	pfs.BoolVarP(&cfg.auto, "auto", "a", false, "guess automatically instead of reading from stdin (env: HILO_AUTO)")
	pfs.DurationVar(&cfg.delay, "delay", 250*time.Millisecond, "pause before each automatic guess (env: HILO_DELAY)")

	cmd.PersistentFlags().BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: HILO_VERBOSE)")

	for _, fs := range []*pflag.FlagSet{sfs, pfs, cmd.PersistentFlags()} {
		fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
			return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
		})

		fs.VisitAll(func(f *pflag.Flag) {
			_ = v.BindPFlag(f.Name, f)
			_ = v.BindEnv(f.Name)
			if !f.Changed && v.IsSet(f.Name) {
				_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
			}
		})
	}

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("hilo v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
