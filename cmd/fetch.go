package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the source datasets if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newService().Warm(cmd.Context()); err != nil {
			return err
		}
		zap.L().Info("datasets ready", zap.String("dir", cfg.Data.Dir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
