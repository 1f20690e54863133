// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/reportvault/pkg/configs"
)

var (
	// cfgPath 配置文件或配置目录.
	cfgPath string
	// debug 覆盖 server.debug.
	debug bool

	rootCmd = &cobra.Command{
		Use:           "reportvault",
		Short:         "A multi-user report library with folder trees and bulk operations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(cfgPath); err != nil {
				return err
			}

			if debug {
				configs.GetConfig().Server.Debug = true
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")

	registerServeCommand()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerTreeCommands()
	registerVersionCommand()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
