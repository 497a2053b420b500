package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/catalogview/internal/config"
	"github.com/roach88/catalogview/internal/hostws"
	"github.com/roach88/catalogview/internal/shell"
)

// shutdownTimeout bounds graceful server shutdown after a signal.
const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string            // listen address override
	Document string            // document URL opened at startup
	Metadata map[string]string // document metadata for the publisher popup
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a session with the observation server",
		Long: `Run one viewer session and expose it over HTTP until SIGINT or SIGTERM.

Routes:
  GET  /healthz      liveness
  GET  /ws/events    websocket stream of host events
  POST /bus/{name}   dispatch a JSON payload on the session bus
  GET  /cart         cart snapshot

Examples:
  catalogview serve --addr :8090
  catalogview serve --document https://shop.example/catalog.pdf --meta company=Acme`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&opts.Document, "document", "", "document URL to open at startup")
	cmd.Flags().StringToStringVar(&opts.Metadata, "meta", nil, "document metadata key=value pairs")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if err := cfg.Validate(); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			return outputValidationProblems(formatter, opts.ConfigPath, verr.Problems)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to validate config", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := shell.New(cfg, shell.WithContext(ctx))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to start session", err)
	}
	defer app.Close()

	loopDone := make(chan error, 1)
	go func() { loopDone <- app.Loop.Run(ctx) }()

	if opts.Document != "" {
		doc := staticDocument(opts.Metadata)
		if err := app.Loop.Do(ctx, func() { app.SetDocument(doc, opts.Document) }); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to open document", err)
		}
		formatter.VerboseLog("Opened document %s", opts.Document)
	}

	srv := hostws.New(app, cfg.Server)
	serveDone := make(chan error, 1)
	go func() { serveDone <- srv.ListenAndServe() }()

	fmt.Fprintf(formatter.GetErrWriter(), "serving on %s\n", cfg.Server.Addr)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serveDone:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		formatter.VerboseLog("shutdown: %v", err)
	}

	stop()
	<-loopDone

	if serveErr != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "server failed", serveErr)
	}
	return nil
}

// staticDocument serves fixed metadata.
type staticDocument map[string]string

func (d staticDocument) Metadata(context.Context) (map[string]string, error) {
	return maps.Clone(d), nil
}
