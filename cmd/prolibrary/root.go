package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/emzola/prolibrary/internal/codec"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	output     string
	yes        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "prolibrary",
		Short:         "Manage a small library catalog stored in a hosted books table",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				return os.Setenv("CONFIG_PATH", opts.configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default config.yml)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", string(codec.FormatTable), "output format: table, json or yaml")
	root.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		newServeCmd(),
		newShellCmd(opts),
		newListCmd(opts),
		newAddCmd(),
		newToggleCmd(),
		newRemoveCmd(opts),
		newImportCmd(),
		newExportCmd(opts),
	)
	return root
}

// withApp builds the application, runs fn with a context cancelled on
// SIGINT or SIGTERM and tears everything down afterwards.
func withApp(logOut io.Writer, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(logOut)
	if err != nil {
		return err
	}
	defer a.close()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}
