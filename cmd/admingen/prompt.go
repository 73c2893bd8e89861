package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-admingen/internal/app"
	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/render"
	"github.com/goliatone/go-admingen/pkg/renderers/tui"
)

func newPromptCommand(flags *globalFlags) *cobra.Command {
	var (
		output   string
		dryRun   bool
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "prompt <entity>",
		Short: "Create a record by answering terminal prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := tui.ParseOutputFormat(output)
			if !ok {
				return fmt.Errorf("unknown output format %q (json, form or pretty)", output)
			}
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			name := args[0]
			entity, err := application.Admin.Entity(name)
			if err != nil {
				return err
			}
			if !entity.Config.Actions.Create {
				return fmt.Errorf("entity %q does not allow creation", name)
			}
			f, err := application.Admin.NewForm(name, nil)
			if err != nil {
				return err
			}
			page, err := application.Admin.FormPage(ctx, name, f, "")
			if err != nil {
				return err
			}

			renderer, err := tui.New(
				tui.WithOutput(cmd.OutOrStdout()),
				tui.WithOutputFormat(format),
				tui.WithMaxAttempts(attempts),
				tui.WithValidator(formValidator(f)),
				tui.WithSubmitTransformer(func(map[string]any) (map[string]any, error) {
					return f.Payload(), nil
				}),
			)
			if err != nil {
				return err
			}
			payload, err := renderer.Render(ctx, page, render.RenderOptions{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			if dryRun {
				return nil
			}

			out := entity.Controller.Save(ctx, f, "")
			if !out.OK {
				return fmt.Errorf("%s: %w", out.Notice.Message, out.Err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s (id %v)\n", out.Notice.Message, out.Item["id"])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the payload without storing it")
	cmd.Flags().IntVar(&attempts, "attempts", tui.DefaultMaxAttempts, "validation passes before giving up")
	return cmd
}

// formValidator binds the prompted values to f and reports its field errors.
func formValidator(f *form.Form) tui.Validator {
	return func(_ context.Context, values map[string]any) map[string][]string {
		errs := make(map[string][]string)
		for key, value := range values {
			if err := f.Set(key, value); err != nil {
				errs[key] = append(errs[key], err.Error())
			}
		}
		for key, messages := range f.Validate().FieldErrors() {
			errs[key] = append(errs[key], messages...)
		}
		if len(errs) == 0 {
			return nil
		}
		return errs
	}
}
