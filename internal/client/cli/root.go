// Package cli implements the upscaler-cli command tree on top of the HTTP
// client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/upscaler/internal/client/client"
	"github.com/dmitrijs2005/upscaler/internal/client/config"
	"github.com/dmitrijs2005/upscaler/internal/filex"
	"github.com/spf13/cobra"
)

var errNoSession = errors.New("no session: run `upscaler-cli session` first")

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	server     string
	tokenFile  string
	format     string

	cfg    *config.Config
	client *client.HTTPClient
	token  string
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree, so tests can run several in one process.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "upscaler-cli",
		Short: "Upload, select and upscale images on an upscaler server",
		Long: "upscaler-cli drives the upscaler HTTP API.\n\n" +
			"Start with `upscaler-cli session`; the token is kept in the token file\n" +
			"and reused by later commands until `upscaler-cli clear`.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", os.Getenv("UPSCALER_CLI_CONFIG"), "path to JSON config file")
	f.StringVarP(&a.server, "server", "s", "", "server address (default http://127.0.0.1:8080)")
	f.StringVar(&a.tokenFile, "token-file", "", "session token file (default ~/.upscaler/token)")
	f.StringVarP(&a.format, "format", "f", "", "output format: auto, table or json")

	root.AddCommand(
		a.sessionCmd(),
		a.uploadCmd(),
		a.listCmd(),
		a.getCmd(),
		a.selectCmd(),
		a.removeCmd(),
		a.processingCmd(),
		a.processCmd(),
		a.cancelCmd(),
		a.processedCmd(),
		a.downloadCmd(),
		a.clearCmd(),
		versionCmd(),
	)

	return root
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// setup loads the config file, applies explicitly set flags over it and
// builds the HTTP client with the stored token.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = a.server
	}
	if flags.Changed("token-file") {
		cfg.TokenFile = a.tokenFile
	}
	if flags.Changed("format") {
		cfg.Output = a.format
	}
	switch cfg.Output {
	case config.OutputAuto, config.OutputTable, config.OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output)
	}
	a.cfg = cfg

	token, err := a.readToken()
	if err != nil {
		return err
	}
	a.token = token

	c, err := client.NewHTTPClient(cfg.Server, token, cfg.Timeout)
	if err != nil {
		return fmt.Errorf("server address: %w", err)
	}
	a.client = c
	return nil
}

func (a *app) readToken() (string, error) {
	b, err := os.ReadFile(a.cfg.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (a *app) saveToken(token string) error {
	_, err := filex.WriteFile(filepath.Dir(a.cfg.TokenFile), filepath.Base(a.cfg.TokenFile), []byte(token+"\n"), 0o600)
	return err
}

func (a *app) removeToken() error {
	err := os.Remove(a.cfg.TokenFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// requireSession fails early for commands that need a token.
func (a *app) requireSession(cmd *cobra.Command, args []string) error {
	if a.token == "" {
		return errNoSession
	}
	return nil
}

// explain adds a hint to errors the user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return fmt.Errorf("%w (session expired? run `upscaler-cli session`)", err)
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Errorf("%w (is the server running?)", err)
	}
	return err
}

func (a *app) out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
