package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"downloadpage/internal/preference"
	"downloadpage/internal/request"
)

func newEnvCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the resolved environment and request configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			f, err := request.NewFactory(cfg.PageURL, cfg.Env)
			if err != nil {
				return err
			}
			rc := f.Config()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, row("environment", f.Env().String()))
			fmt.Fprintln(out, row("baseUrlPrefix", rc.BaseURLPrefix))
			fmt.Fprintln(out, row("credentials", string(rc.Credentials)))
			mode := string(rc.Mode)
			if mode == "" {
				mode = "(unset)"
			}
			fmt.Fprintln(out, row("mode", mode))
			for _, p := range []string{"/cookie", "/forget", "/recent-downloads", "/link-copied"} {
				u, err := f.URL(p)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, row(p, u.String()))
			}
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Load the page and print the link table, recent rows first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.load(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer p.Close()
			if asHTML {
				return p.Document().Render(cmd.OutOrStdout())
			}
			renderPage(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "print the reconciled document instead of the table")
	return cmd
}

// newClickCmd clicks the button when it is in the state the command
// expects, so "remember" never forgets and vice versa.
func newClickCmd(opts *options, use, short string, remember bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.load(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer p.Close()
			want := preference.Forgotten
			if remember {
				want = preference.Remembered
			}
			if p.State() != want {
				if err := p.Click(cmd.Context()); err != nil {
					return err
				}
			}
			if p.State() != want {
				return fmt.Errorf("%s did not take effect; state is %s", use, p.State())
			}
			renderPage(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newCopyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <link>",
		Short: "Report a copied download link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.load(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := p.CopyLink(cmd.Context(), args[0]); err != nil {
				p.Close()
				return err
			}
			// Close waits for the beacon.
			if err := p.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), row("copied", args[0]))
			return nil
		},
	}
}
