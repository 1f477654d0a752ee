package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Act on the storage component directly",
	Long: `Storage commands bypass the registry. Writes succeed only with a token for
the current storage owner, which is the registry until ownership is
transferred. Names are written exactly as given.`,
}

var storageOwnerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show the storage address and its current owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().StorageOwner(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var storageAssignCmd = &cobra.Command{
	Use:   "assign <address> <name>",
	Short: "Bind name to address as the storage owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddressArg(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().StorageAssignName(ctx, addr, args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var storageResolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Look up a name exactly as stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().StorageResolveName(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var storageWhoisCmd = &cobra.Command{
	Use:   "whois <address>",
	Short: "Look up the stored name of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddressArg(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		resp, err := newClient().StorageResolveAddress(ctx, addr)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var storageTransferCmd = &cobra.Command{
	Use:   "transfer <new-owner>",
	Short: "Hand storage ownership to another address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddressArg(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		if err := newClient().StorageTransferOwnership(ctx, addr); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "storage owner is now %s\n", addr.Hex())
		return err
	},
}

var storageRenounceCmd = &cobra.Command{
	Use:   "renounce",
	Short: "Give up storage ownership permanently",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("renouncing is irreversible; pass --yes to confirm")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		if err := newClient().StorageRenounceOwnership(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "storage ownership renounced")
		return err
	},
}

func init() {
	storageRenounceCmd.Flags().Bool("yes", false, "confirm the irreversible renounce")
	storageCmd.AddCommand(storageOwnerCmd, storageAssignCmd, storageResolveCmd, storageWhoisCmd,
		storageTransferCmd, storageRenounceCmd)
	rootCmd.AddCommand(storageCmd)
}
