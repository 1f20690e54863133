package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list all registered database types",
		Aliases: []string{"list", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")

			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+dbType)
			}
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the folders and reports tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := db.New(cmd.Context(), &configs.GetConfig().DB)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
