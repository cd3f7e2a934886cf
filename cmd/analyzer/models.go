package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ai-error-analysis/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	var providerFilter string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List supported providers and models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(providerFilter)
		},
	}

	cmd.Flags().StringVar(&providerFilter, "provider", "", "Show models for one provider only")

	return cmd
}

func runModels(providerFilter string) error {
	c := catalog.New()

	providers := c.Providers()
	if providerFilter != "" {
		if _, err := c.Lookup(providerFilter); err != nil {
			return fmt.Errorf("%w: %s (supported: %s)", err, providerFilter, strings.Join(providers, ", "))
		}
		providers = []string{strings.ToLower(providerFilter)}
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, providerID := range providers {
		def, err := c.DefaultModel(providerID)
		if err != nil {
			return err
		}
		models, err := c.Models(providerID)
		if err != nil {
			return err
		}

		bold.Fprintf(w, "%s\n", strings.ToUpper(providerID))
		for _, m := range models {
			marker := " "
			if m.Model == def {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s\t%d tokens\t$%.4f/1K\n", marker, m.Model, m.MaxOutputTokens, m.CostPer1K)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	dim.Fprintln(os.Stdout, "* provider default")
	return nil
}
