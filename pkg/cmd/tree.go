package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/jobs"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/storage/db"
)

var (
	treeCmd = &cobra.Command{
		Use:   "tree",
		Short: "Folder tree maintenance commands",
	}

	treeCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "scan the folder tree for dangling parents, cycles, orphan reports and duplicate names",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()

			client, err := db.New(cmd.Context(), &cfg.DB)
			if err != nil {
				return err
			}
			defer client.Close()

			svc := service.NewServices(service.Deps{DB: client.GetDB(), Tree: cfg.Tree})

			report, err := jobs.CheckTree(cmd.Context(), svc.Inspector)
			if err != nil {
				return err
			}

			b, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			if !report.Healthy() {
				return fmt.Errorf("folder tree has %d anomalies", len(report.Anomalies))
			}

			return nil
		},
	}
)

// registerTreeCommands 注册目录树相关命令.
func registerTreeCommands() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.AddCommand(treeCheckCmd)
}
