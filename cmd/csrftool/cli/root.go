// Package cli implements the csrftool commands.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/formcsrf/internal/csrf"
	"github.com/odyssey-erp/formcsrf/internal/view"
)

// ErrInvalidPair is returned by verify when the pair does not match the secret.
var ErrInvalidPair = errors.New("csrf pair is not valid for this secret")

type options struct {
	secret string
}

func (o *options) authenticator() (*csrf.Authenticator, error) {
	secret := o.secret
	if secret == "" {
		secret = os.Getenv("CSRF_SECRET")
	}
	if secret == "" {
		return nil, errors.New("no secret: pass --secret or set CSRF_SECRET")
	}
	return csrf.NewAuthenticator(secret), nil
}

// NewRootCommand builds the csrftool command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "csrftool",
		Short:         "Generate, sign and verify csrf_nonce/csrf_token pairs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.secret, "secret", "", "HMAC secret (defaults to $CSRF_SECRET)")

	root.AddCommand(newGenerateCommand(opts), newSignCommand(opts), newVerifyCommand(opts), newFormCommand(opts))
	return root
}

func newGenerateCommand(opts *options) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print fresh pairs as \"nonce token\" lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}
			auth, err := opts.authenticator()
			if err != nil {
				return err
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			for i := 0; i < count; i++ {
				pair, err := auth.Generate()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s\n", pair.Nonce, pair.Token)
			}
			return out.Flush()
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of pairs")
	return cmd
}

func newSignCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sign NONCE",
		Short: "Print the csrf_token for a nonce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := opts.authenticator()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.Sign(args[0]))
			return nil
		},
	}
}

func newVerifyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify NONCE TOKEN",
		Short: "Exit non-zero unless TOKEN is valid for NONCE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := opts.authenticator()
			if err != nil {
				return err
			}
			if !auth.Verify(args[0], args[1]) {
				return ErrInvalidPair
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}

func newFormCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Print the hidden inputs for a freshly bound form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := opts.authenticator()
			if err != nil {
				return err
			}
			engine, err := view.NewEngine()
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			form := view.NewForm("")
			if _, err := auth.ApplyTo(form); err != nil {
				return err
			}
			return engine.Execute(cmd.OutOrStdout(), "partials/csrf.html", form)
		},
	}
}
