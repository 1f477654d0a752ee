package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ans/internal/ansclient"
	"ans/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "ansctl",
	Short: "Command line client for the Address Name Service",
	Long: `ansctl drives an ANS server over its HTTP API.

Settings come from flags or ANSCTL_* environment variables:
  ANSCTL_SERVER       server base URL
  ANSCTL_TOKEN        bearer token for assign and admin commands
  ANSCTL_SIGNING_KEY  HMAC key used by "ansctl token"`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "ANS server base URL")
	rootCmd.PersistentFlags().String("token", "", "bearer token identifying the caller")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")

	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	viper.SetEnvPrefix("ANSCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newClient() *ansclient.Client {
	return ansclient.New(viper.GetString("server"),
		ansclient.WithToken(viper.GetString("token")),
	)
}

func parseAddressArg(s string) (domain.Address, error) {
	addr, err := domain.ParseAddress(s)
	if err != nil {
		return domain.Address{}, fmt.Errorf("%q: %w", s, err)
	}
	return addr, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
