package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/reportvault/pkg/configs"
	kv "github.com/yeisme/reportvault/pkg/internal/storage/kv"
)

// activityKeyPattern 活动通知去重标记的键模式.
const activityKeyPattern = "activity.linked.*"

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Inspect the key-value store used for activity de-duplication",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list registered kv types, the configured one is marked with *",
		Aliases: []string{"list", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			current := configs.GetConfig().KV.GetKVType()

			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")

			for _, t := range kv.GetRegisteredKVTypes() {
				mark := " "
				if t == current {
					mark = "*"
				}

				fmt.Fprintf(cmd.OutOrStdout(), " %s %s\n", mark, t)
			}
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list keys matching a glob pattern (default: activity de-duplication marks)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := activityKeyPattern
			if len(args) == 1 {
				pattern = args[0]
			}

			client, err := openKV(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.Keys(cmd.Context(), pattern)
			if err != nil {
				return fmt.Errorf("list keys: %w", err)
			}

			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d key(s)\n", len(keys))

			return nil
		},
	}

	kvGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "print the raw value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openKV(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			value, err := client.Get(cmd.Context(), args[0])
			if errors.Is(err, kv.ErrKeyNotFound) {
				return fmt.Errorf("key %q not found", args[0])
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(value))

			return nil
		},
	}
)

// openKV 连接配置中的 KV；memory 类型只在进程内有效，连接后总是空的.
func openKV(cmd *cobra.Command) (*kv.Client, error) {
	cfg := configs.GetConfig().KV
	if cfg.GetKVType() == configs.KVTypeMemory {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: memory kv is process local, nothing to inspect")
	}

	client, err := kv.New(cmd.Context(), &cfg)
	if err != nil {
		return nil, fmt.Errorf("open kv (%s): %w", cfg.Type, err)
	}

	return client, nil
}

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)

	kvCmd.AddCommand(kvListCmd, kvKeysCmd, kvGetCmd)
	kvKeysCmd.Flags().Duration("timeout", 5*time.Second, "give up after this long")
	kvKeysCmd.PreRun = withTimeout
	kvGetCmd.Flags().Duration("timeout", 5*time.Second, "give up after this long")
	kvGetCmd.PreRun = withTimeout
}
