package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const minMessageSize = 128

type Config struct {
	bind           string
	database       string
	maxMessageSize int64
	mcp            bool
	metrics        bool
	port           int
	prefix         string
	profile        bool
	recordTimeout  time.Duration
	sendBuffer     int
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	if c.recordTimeout <= 0 {
		return fmt.Errorf("invalid record timeout (must be positive): %s", c.recordTimeout)
	}
	if c.sendBuffer < 1 {
		return fmt.Errorf("invalid send buffer (must be at least 1): %d", c.sendBuffer)
	}
	if c.maxMessageSize < minMessageSize {
		return fmt.Errorf("invalid max message size (must be at least %d bytes): %d", minMessageSize, c.maxMessageSize)
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
	v.SetEnvPrefix("TICTACTOE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Serves tic-tac-toe in the browser, locally or between two players online.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TICTACTOE_BIND)")
	fs.StringVar(&cfg.database, "database", "", "where to record finished games: postgres:// URL, sqlite path, or empty for memory (env: TICTACTOE_DATABASE)")
	fs.Int64Var(&cfg.maxMessageSize, "max-message-size", 512, "largest websocket message accepted from a player, in bytes (env: TICTACTOE_MAX_MESSAGE_SIZE)")
	fs.BoolVar(&cfg.mcp, "mcp", false, "serve read-only MCP tools at /mcp (env: TICTACTOE_MCP)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "serve Prometheus metrics at /metrics (env: TICTACTOE_METRICS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TICTACTOE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: TICTACTOE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: TICTACTOE_PROFILE)")
	fs.DurationVar(&cfg.recordTimeout, "record-timeout", 5*time.Second, "time allowed for saving a finished game (env: TICTACTOE_RECORD_TIMEOUT)")
	fs.IntVar(&cfg.sendBuffer, "send-buffer", 16, "outbound messages queued per player before disconnecting them (env: TICTACTOE_SEND_BUFFER)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended, 0 to disable (env: TICTACTOE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: TICTACTOE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: TICTACTOE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TICTACTOE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: TICTACTOE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("tictactoe v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
