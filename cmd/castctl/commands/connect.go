package commands

import (
	"github.com/spf13/cobra"

	"castctl.app/castctl/internal/session"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a device and serve it in the foreground",
	Long: `Find a cast device and publish it as a desktop media player until
interrupted.

Examples:
  # First device found on the network
  castctl connect

  # A specific device by name, retrying discovery every 30 seconds
  castctl connect --name "Living Room TV" --wait-period 30

  # A known address, no discovery
  castctl connect --host 192.168.1.30:8009
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return session.RunServer(argsFromFlags())
	},
}

func init() {
	addDeviceFlags(connectCmd)
	rootCmd.AddCommand(connectCmd)
}
