package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"downloadpage/internal/app"
	"downloadpage/internal/env"
)

type options struct {
	page        string
	env         string
	state       string
	markerStyle string
	js          bool
	verbose     bool
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := app.DefaultConfig()
	opts := &options{
		page:        defaults.PageURL,
		env:         string(defaults.Env),
		state:       defaults.StatePath,
		markerStyle: defaults.Table.MarkerStyle,
		js:          defaults.JS,
	}

	cmd := &cobra.Command{
		Use:          "dkpage",
		Short:        "Drive the download page's remember-me button, recent downloads and copy beacon",
		SilenceUsage: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.page, "page", opts.page, "page URL the environment is resolved from (DK_PAGE_URL)")
	pf.StringVar(&opts.env, "env", opts.env, "force the environment: dev, docker or production (DK_ENV)")
	pf.StringVar(&opts.state, "state", opts.state, "SQLite cookie database; empty keeps cookies in memory (DK_STATE)")
	pf.StringVar(&opts.markerStyle, "marker-style", opts.markerStyle, "inline CSS for the recent marker (DK_MARKER_STYLE)")
	pf.BoolVar(&opts.js, "js", opts.js, "render the page in headless Chrome (DK_JS)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and component diagnostics")

	cmd.AddCommand(
		newEnvCmd(opts),
		newShowCmd(opts),
		newClickCmd(opts, "remember", "Opt into being remembered", true),
		newClickCmd(opts, "forget", "Forget the remembered session", false),
		newCopyCmd(opts),
		newWatchCmd(opts),
		newServeCmd(),
	)
	return cmd
}

// config turns the flags into a page configuration.
func (o *options) config() (app.Config, error) {
	cfg := app.DefaultConfig()
	cfg.PageURL = o.page
	e, err := env.Parse(o.env)
	if err != nil {
		return cfg, err
	}
	cfg.Env = e
	cfg.StatePath = o.state
	cfg.Table.MarkerStyle = o.markerStyle
	cfg.JS = o.js
	cfg.Logger = log.Default()
	if !o.verbose {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return cfg, nil
}

func (o *options) load(ctx context.Context, loader app.Loader) (*app.Page, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	cfg.Loader = loader
	return app.Load(ctx, cfg)
}
