package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yeisme/reportvault/pkg/configs"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	// 不需要加载配置
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s %s/%s)\n",
			configs.AppName, configs.AppVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func registerVersionCommand() {
	rootCmd.AddCommand(versionCmd)
}
