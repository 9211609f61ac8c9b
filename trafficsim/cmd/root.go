// Package cmd provides the command-line interface of trafficsim.
package cmd

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables that provide flag defaults. They can also be set in
// a .env file in the working directory.
const (
	envMonitorPort = "TRAFFICSIM_MONITOR_PORT"
	envOutput      = "TRAFFICSIM_OUTPUT"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trafficsim",
	Short: "trafficsim runs packet traffic scenarios on a simulated network.",
	Long: `trafficsim runs packet traffic scenarios on a simulated network. ` +
		`A scenario file describes the network, the packet sinks and the ` +
		`packet sources. Runs are recorded into a SQLite database.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	log.SetOutput(os.Stderr)

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring .env: %v", err)
	}
}

func envString(key, fallback string) string {
	value, found := os.LookupEnv(key)
	if !found {
		return fallback
	}

	return value
}

func envInt(key string, fallback int) int {
	value, found := os.LookupEnv(key)
	if !found {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, value, err)
		return fallback
	}

	return n
}
