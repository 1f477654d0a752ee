package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var assignCmd = &cobra.Command{
	Use:   "assign <name>",
	Short: "Bind a name to the token's address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().AssignName(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Look up the address bound to a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().ResolveName(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var whoisCmd = &cobra.Command{
	Use:   "whois <address>",
	Short: "Look up the name bound to an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddressArg(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().ResolveAddress(ctx, addr)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show the registry owner and the storage binding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().Owner(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(assignCmd, resolveCmd, whoisCmd, ownerCmd)
}
