package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/reportvault/pkg/configs"
	mq "github.com/yeisme/reportvault/pkg/internal/storage/mq"
	"github.com/yeisme/reportvault/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list registered mq types, the configured one is marked with *",
		Aliases: []string{"list", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			current := configs.GetConfig().MQ.GetMQType()

			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")

			for _, t := range mq.GetRegisteredMQTypes() {
				mark := " "
				if t == current {
					mark = "*"
				}

				fmt.Fprintf(cmd.OutOrStdout(), " %s %s\n", mark, t)
			}
		},
	}

	mqTopicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "list event topics as they appear on the configured broker",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := configs.GetConfig().MQ

			prefix := ""
			if cfg.Type == configs.MQTypeNATS {
				prefix = cfg.NATS.SubjectPrefix
			}

			for _, t := range queue.AllTopics() {
				fmt.Fprintln(cmd.OutOrStdout(), prefix+t)
			}
		},
	}

	mqPingCmd = &cobra.Command{
		Use:   "ping",
		Short: "connect to the configured broker and run a health check",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig().MQ

			client, err := mq.New(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.HealthCheck(cmd.Context()); err != nil {
				return fmt.Errorf("mq (%s) unhealthy: %w", cfg.Type, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "mq (%s) ok\n", client.Type())

			return nil
		},
	}
)

// withTimeout 按 --timeout 为命令的 ctx 设置超时.
func withTimeout(cmd *cobra.Command, _ []string) {
	d, err := cmd.Flags().GetDuration("timeout")
	if err != nil || d <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), d)
	cmd.SetContext(ctx)
	cobra.OnFinalize(cancel)
}

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)

	mqCmd.AddCommand(mqListCmd, mqTopicsCmd, mqPingCmd)
	mqPingCmd.Flags().Duration("timeout", 5*time.Second, "give up after this long")
	mqPingCmd.PreRun = withTimeout
}
