package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-crop-mcp/internal/config"
	"github.com/ironsheep/image-crop-mcp/internal/imaging"
	"github.com/ironsheep/image-crop-mcp/internal/session"
)

// app carries what PersistentPreRunE resolves for the subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "image-crop-mcp",
		Short: "Crop images and compress them to a byte budget",
		Long: `image-crop-mcp selects, crops, and compresses images.

Run without a subcommand (or with "serve") it speaks the Model Context
Protocol over stdin/stdout so an MCP client can drive an editing session.
The remaining subcommands perform a single operation on a file.

Logs go to stderr. Settings come from an optional YAML file (--config),
then IMAGE_CROP_* environment variables, which may also be placed in a
.env file in the working directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.setup(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $IMAGE_CROP_CONFIG)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newInfoCmd(a))
	cmd.AddCommand(newCropCmd(a))
	cmd.AddCommand(newCenterCropCmd(a))
	cmd.AddCommand(newCompressCmd(a))

	return cmd
}

// setup loads configuration and installs the JSON logger on stderr.
func (a *app) setup(stderr io.Writer) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if _, err := config.ParseLogLevel(a.logLevel); err != nil {
			return err
		}
		cfg.LogLevel = a.logLevel
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(a.logger)
	return nil
}

// newSession builds a session from the loaded configuration.
func (a *app) newSession() *session.Session {
	opts := a.cfg.SessionOptions()
	opts.Logger = a.logger
	return session.New(opts)
}

// openSession builds a session and opens path in it.
func (a *app) openSession(path string) (*session.Session, error) {
	s := a.newSession()
	if err := s.Open(path); err != nil {
		return nil, err
	}
	return s, nil
}

// parseFormatFlag returns the named format, or "" to follow the extension.
func parseFormatFlag(name string) (imaging.Format, error) {
	if name == "" {
		return "", nil
	}
	return imaging.ParseFormat(name)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
