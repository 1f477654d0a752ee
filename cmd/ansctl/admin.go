package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Owner-only registry administration",
}

var setStorageCmd = &cobra.Command{
	Use:   "set-storage <address>",
	Short: "Bind the storage component (once)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddressArg(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		if err := newClient().SetStorageAddress(ctx, addr); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "storage bound to %s\n", addr.Hex())
		return err
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <new-owner>",
	Short: "Hand the storage component to a new owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddressArg(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		if err := newClient().TransferStorageOwnership(ctx, addr); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "storage owner is now %s\n", addr.Hex())
		return err
	},
}

var renounceCmd = &cobra.Command{
	Use:   "renounce",
	Short: "Leave the storage component without an owner; no further names can be assigned",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("renouncing is irreversible; pass --yes to confirm")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
		defer cancel()
		if err := newClient().RenounceStorageOwnership(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "storage ownership renounced")
		return err
	},
}

func init() {
	renounceCmd.Flags().Bool("yes", false, "confirm the irreversible renounce")
	adminCmd.AddCommand(setStorageCmd, transferCmd, renounceCmd)
	rootCmd.AddCommand(adminCmd)
}
