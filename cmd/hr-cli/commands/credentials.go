package commands

import (
	"fmt"
	"hrtools/lib/credstore"
	"hrtools/lib/scrapers/horsereality/core"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsShowCmd, credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func redact(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manages the remember credential kept in the system keyring.",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <cookie name> <cookie value>",
	Short: "Stores the remember_web_* cookie of a logged in browser.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred := core.RememberCredential{Name: args[0], Value: args[1]}
		if err := cred.Validate(); err != nil {
			return err
		}
		err := credstore.NewKeyringStore().Set(profile, cred)
		if err != nil {
			return err
		}
		fmt.Printf("stored credential for profile %q\n", profile)
		return nil
	},
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the stored credential with its value redacted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credstore.NewKeyringStore().Get(profile)
		if err != nil {
			return fmt.Errorf("profile %q: %w", profile, err)
		}
		fmt.Printf("%s=%s\n", cred.Name, redact(cred.Value))
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Removes the stored credential.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := credstore.NewKeyringStore().Delete(profile)
		if err != nil {
			return fmt.Errorf("profile %q: %w", profile, err)
		}
		fmt.Printf("deleted credential for profile %q\n", profile)
		return nil
	},
}
