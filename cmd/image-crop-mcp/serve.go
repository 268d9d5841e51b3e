package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-crop-mcp/internal/config"
	"github.com/ironsheep/image-crop-mcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Starts the MCP server. Requests are read from stdin, one JSON-RPC
message per line, and responses are written to stdout.

The server holds a single editing session: image_load opens the working
image, and the selection, crop, compress, and save tools act on it.`,
		Example: `  # Claude Desktop / MCP client configuration
  {"command": "image-crop-mcp", "args": ["serve"]}

  # Verbose logging to stderr
  image-crop-mcp serve --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}
}

func (a *app) serve(cmd *cobra.Command) error {
	prefs, err := config.LoadPreferences(a.cfg.PreferencesPath)
	if err != nil {
		a.logger.Warn("ignoring preferences", "path", a.cfg.PreferencesPath, "err", err)
	}

	server.Version = Version
	srv := server.New(a.cfg, prefs, a.logger)

	a.logger.Info("image-crop-mcp starting",
		"version", Version, "built", BuildTime, "commit", GitCommit,
		"language", prefs.Get())
	if err := srv.Run(cmd.Context()); err != nil {
		a.logger.Error("server error", "err", err)
		return err
	}
	a.logger.Info("image-crop-mcp stopped")
	return nil
}
