package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nhle/guidance/internal/model"
)

func (c *cli) stepsCmd() *cobra.Command {
	var approach string
	cmd := &cobra.Command{
		Use:   "steps TAG",
		Short: "Print the guidance steps for a struggle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := model.ParseApproach(approach)
			if err != nil {
				return err
			}
			cat, err := c.catalog()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tag := args[0]
			fmt.Fprintf(out, "%s (%s)\n", cat.TitleFor(tag), a)
			if !cat.HasDedicatedSteps(tag, a) {
				fmt.Fprintln(out, "  no dedicated plan for this struggle, showing the general one")
			}
			for _, d := range cat.Steps(tag, a) {
				fmt.Fprintf(out, "  %d. %s\n     %s\n", d.Number, d.Title, d.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&approach, "approach", string(model.ApproachCBTPCIT), "Approach: CBT+PCIT or Alternative")
	return cmd
}

func (c *cli) titleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title TEXT",
		Short: "Print the flow title a struggle would get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cat.TitleFor(args[0]))
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			return enc.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to --config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if err := model.SaveConfig(c.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", c.configPath)
			return nil
		},
	})

	return cmd
}
