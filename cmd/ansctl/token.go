package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	jwttoken "ans/internal/jwt_token"
)

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Mint a bearer token for a caller address",
	Long: `Mint a bearer token whose subject is the given address, signed with the
server's HMAC key. Intended for development and tests.

Examples:
  export ANSCTL_TOKEN=$(ansctl token 0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1 --signing-key dev)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := parseAddressArg(args[0])
		if err != nil {
			return err
		}
		key := viper.GetString("signing_key")
		if key == "" {
			return errors.New("signing key is required (--signing-key or ANSCTL_SIGNING_KEY)")
		}
		svc := jwttoken.NewJWTService(key, viper.GetString("issuer"), viper.GetString("audience"))
		token, err := svc.GenerateCallerToken(caller, viper.GetDuration("ttl"))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenCmd.Flags().String("signing-key", "", "HMAC signing key shared with the server")
	tokenCmd.Flags().String("issuer", "ans", "token issuer")
	tokenCmd.Flags().String("audience", "ans-api", "token audience")
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")

	_ = viper.BindPFlag("signing_key", tokenCmd.Flags().Lookup("signing-key"))
	_ = viper.BindPFlag("issuer", tokenCmd.Flags().Lookup("issuer"))
	_ = viper.BindPFlag("audience", tokenCmd.Flags().Lookup("audience"))
	_ = viper.BindPFlag("ttl", tokenCmd.Flags().Lookup("ttl"))
	rootCmd.AddCommand(tokenCmd)
}
