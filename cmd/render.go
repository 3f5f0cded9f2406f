package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <country>",
	Short: "Render the river map for one country",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		artifacts, err := newService().Generate(cmd.Context(), query)
		if err != nil {
			return err
		}

		fmt.Printf("PNG: %s\nSVG: %s\n", artifacts.PNG, artifacts.SVG)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
