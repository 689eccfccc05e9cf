package commands

import (
	"github.com/spf13/cobra"

	"castctl.app/castctl/internal/session"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the background service",
}

var serviceStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the service in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := session.Start(argsFromFlags())
		if err != nil {
			return err
		}
		cmd.Printf("Service started, pid %d\n", pid)
		return nil
	},
}

var serviceStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Stop(); err != nil {
			return err
		}
		cmd.Println("Service stopped")
		return nil
	},
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the background service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := session.Status()
		if err != nil {
			return err
		}
		cmd.Printf("Service running, pid %d, device %q, started %s\n",
			st.PID, st.Args.Identifier(), st.StartedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	addDeviceFlags(serviceStartCmd)
	serviceCmd.AddCommand(serviceStartCmd, serviceStopCmd, serviceStatusCmd)
	rootCmd.AddCommand(serviceCmd)
}
