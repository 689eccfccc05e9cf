// Package commands implements the castctl command line interface.
package commands

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"castctl.app/castctl/internal/session"
)

var (
	// Version is set at build time
	Version = "dev"
)

var (
	flagName      string
	flagHost      string
	flagUUID      string
	flagWait      float64
	flagRetries   int
	flagLightIcon bool
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "castctl",
	Short: "castctl - desktop media controls for cast devices",
	Long: `castctl connects to a cast device on the local network and publishes
it as a desktop media player, so the desktop's standard media controls
and widgets drive the device.

Use "castctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(flagLogLevel)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagLogLevel, "log-level", "l", "warn", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

// addDeviceFlags registers the device selection flags shared by the
// commands that resolve a device.
func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagName, "name", "n", "", "Device friendly name")
	cmd.Flags().StringVar(&flagHost, "host", "", "Device address as host or host:port, skips discovery")
	cmd.Flags().StringVarP(&flagUUID, "uuid", "u", "", "Device UUID")
	cmd.Flags().Float64VarP(&flagWait, "wait-period", "w", 0, "Seconds between discovery sweeps, 0 gives up after one")
	cmd.Flags().IntVar(&flagRetries, "retries", 5, "Connection retry budget")
	cmd.Flags().BoolVarP(&flagLightIcon, "icon", "i", false, "Use the light icon variant")
}

func argsFromFlags() session.Args {
	return session.Args{
		Name:      flagName,
		Host:      flagHost,
		UUID:      flagUUID,
		WaitSecs:  flagWait,
		Retries:   flagRetries,
		LightIcon: flagLightIcon,
		LogLevel:  flagLogLevel,
	}
}

func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = time.RFC3339

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	session.LogOutput = out
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("castctl %s\n", Version)
	},
}
