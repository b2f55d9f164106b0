package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Logs in with the remember credential and reports the session state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := setupClients()
		if err != nil {
			return err
		}
		defer c.Close()

		err = c.core.Verify(cmd.Context())
		state := c.core.State()
		if err != nil {
			return err
		}
		fmt.Printf("state: %s (session %d)\n", state.Kind, state.Generation)
		if !state.Until.IsZero() {
			fmt.Printf("cooling down until %s\n", state.Until.Format(time.Kitchen))
		}
		return nil
	},
}
