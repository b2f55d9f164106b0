package commands

import (
	"fmt"
	"hrtools/lib/serviceutil"
	"log/slog"

	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "The port to listen on.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port]",
	Short: "Serves horses and the session state over http.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := setupClients()
		if err != nil {
			return err
		}
		defer c.Close()

		stop := instrumentProcess(cmd.Context())
		defer stop()

		addr := fmt.Sprintf(":%d", servePort)
		server := serviceutil.NewHttpServer(addr, newApiHandler(c.view, c.core))
		slog.Info("listening", "addr", addr)
		return serviceutil.ServeUntilDone(cmd.Context(), server)
	},
}
