package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/inventory-crud-api/internal/config"
	"github.com/sandeepkv93/inventory-crud-api/internal/di"
	"github.com/sandeepkv93/inventory-crud-api/internal/tools/common"
	"github.com/sandeepkv93/inventory-crud-api/internal/tools/ui"
)

type options struct {
	envFile      string
	userPassword string
	ci           bool
	timeout      time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Sample data tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.userPassword, "user-password", "changeme", "password assigned to sample users")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall command timeout")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Insert sample products and users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "apply", func(ctx context.Context) ([]string, error) {
				if err := config.LoadDotEnv(opts.envFile); err != nil {
					return nil, err
				}
				ts, err := di.InitializeToolServices()
				if err != nil {
					return nil, err
				}
				defer ts.Close()
				return Apply(ctx, ts.Products, ts.Users, DefaultPlan(opts.userPassword))
			})
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what apply would insert",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "dry-run", func(ctx context.Context) ([]string, error) {
				return DefaultPlan(opts.userPassword).Describe(), nil
			})
		},
	}
}

func execute(opts *options, command string, fn func(context.Context) ([]string, error)) error {
	title := "seed " + command
	start := time.Now()
	var (
		details []string
		err     error
	)
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		details, err = fn(ctx)
		cancel()
	} else {
		details, err = ui.Run(title, opts.timeout, fn)
	}
	elapsed := time.Since(start)
	common.RecordCommand(context.Background(), "seed", command, elapsed, err)

	if opts.ci {
		common.PrintCIResult(err == nil, title, elapsed, details, err)
	}
	if err != nil {
		if !opts.ci {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(3)
	}
	return nil
}
