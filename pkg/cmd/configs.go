package cmd

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/reportvault/pkg/configs"
)

// secretFields 输出配置时替换为 "***" 的字段（忽略大小写与下划线）.
var secretFields = map[string]bool{
	"password":        true,
	"secret":          true,
	"secretkey":       true,
	"secretaccesskey": true,
	"accesskeyid":     true,
	"jwt":             true,
	"nkey":            true,
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "validate the current config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.GetConfig().Validate(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "config is valid")

			return nil
		},
	}

	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the config file in use",
		Run: func(cmd *cobra.Command, args []string) {
			v := configs.GetViper()
			if v == nil || v.ConfigFileUsed() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and environment only)")

				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), v.ConfigFileUsed())
		},
	}

	showCmd = &cobra.Command{
		Use:     "show [section]",
		Short:   "print the effective config as JSON with secrets masked, optionally one section (e.g. tree, bulk)",
		Aliases: []string{"debug"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if v := configs.GetViper(); v != nil {
					v.Debug()
				}
			}

			out, err := renderConfig(configs.GetConfig(), args)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)

			return nil
		},
	}
)

// renderConfig 经 JSON 往返得到通用 map，屏蔽敏感字段后输出.
func renderConfig(cfg *configs.AppConfig, section []string) (string, error) {
	raw, err := sonic.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	var tree map[string]any
	if err := sonic.Unmarshal(raw, &tree); err != nil {
		return "", fmt.Errorf("unmarshal config: %w", err)
	}

	var node any = maskSecrets(tree)

	if len(section) == 1 {
		found := false

		for k, v := range tree {
			if strings.EqualFold(k, strings.ReplaceAll(section[0], "_", "")) {
				node, found = v, true

				break
			}
		}

		if !found {
			return "", fmt.Errorf("unknown config section %q", section[0])
		}
	}

	b, err := sonic.ConfigStd.MarshalIndent(node, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	return string(b), nil
}

func maskSecrets(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			m[k] = maskSecrets(val)
		case string:
			if val != "" && secretFields[strings.ToLower(strings.ReplaceAll(k, "_", ""))] {
				m[k] = "***"
			}
		}
	}

	return m
}

// registerConfigsCommands 注册 config 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(pathCmd, showCmd, validateCmd)

	rootCmd.AddCommand(configCmd)
}
