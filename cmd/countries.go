package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the sovereignty names in the countries dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := newService().CountryNames(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countriesCmd)
}
