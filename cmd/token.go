package cmd

import (
	"fmt"
	"time"

	"github.com/gogotex/gogotex/backend/user-sync/internal/tokens"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
	tokenSecret  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := tokens.GenerateServiceToken(tokenSecret, tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "token subject (caller name)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", getEnv("AUTH_JWT_SECRET", ""), "HS256 signing secret")
	_ = tokenCmd.MarkFlagRequired("subject")
}
