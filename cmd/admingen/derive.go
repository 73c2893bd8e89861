package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	admingen "github.com/goliatone/go-admingen"
	"github.com/goliatone/go-admingen/internal/app"
	"github.com/goliatone/go-admingen/internal/loader"
	"github.com/goliatone/go-admingen/pkg/model"
)

func newDeriveCommand(flags *globalFlags) *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "derive <source>",
		Short: "Print the admin configuration derived from a document",
		Long: `derive reads a definition file, an OpenAPI document or a JSON Schema
from a path or an http(s) URL and prints the derived configuration of every
entity it declares as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			src, err := loader.Parse(args[0])
			if err != nil {
				return err
			}
			l := loader.New(loader.Options{AllowHTTP: true, Timeout: 30 * time.Second})
			raw, err := l.Load(cmd.Context(), src)
			if err != nil {
				return err
			}
			options, err := app.AdminOptions(cfg, logger)
			if err != nil {
				return err
			}
			configs, err := admingen.Derive(cmd.Context(), raw, src.String(), options...)
			if err != nil {
				return err
			}

			var out any = configs
			if entity != "" {
				match, ok := findConfig(configs, entity)
				if !ok {
					return fmt.Errorf("entity %q not found in %s", entity, src)
				}
				out = match
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", "", "print only this entity")
	return cmd
}

func findConfig(configs []model.AdminConfig, entity string) (model.AdminConfig, bool) {
	for _, cfg := range configs {
		if cfg.Entity == entity {
			return cfg, true
		}
	}
	return model.AdminConfig{}, false
}
