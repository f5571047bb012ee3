package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "codefusion",
		Short:         "Convert and review code through a CodeFusion server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("server", "", "CodeFusion server URL (env CODEFUSION_SERVER_URL)")
	flags.Duration("timeout", 0, "Request timeout (env CODEFUSION_TIMEOUT)")
	flags.StringVar(&ctx.logLevel, "log-level", "warn", "Log level for diagnostics on stderr")
	_ = ctx.viper.BindPFlag("CODEFUSION_SERVER_URL", flags.Lookup("server"))
	_ = ctx.viper.BindPFlag("CODEFUSION_TIMEOUT", flags.Lookup("timeout"))

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newReviewCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
