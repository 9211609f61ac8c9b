package cmd

import (
	"fmt"
	"net/netip"

	"github.com/sarchlab/trafficsim/scenario"
	"github.com/sarchlab/trafficsim/transport"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>...",
	Short: "Check scenario files without running them.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0

		for _, path := range args {
			sc, err := scenario.Load(path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)

				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d sinks, %d sources)\n",
				path, len(sc.Sinks), len(sc.Sources))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios are not valid",
				failed, len(args))
		}

		return nil
	},
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print a scenario with one sink and one source.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := exampleScenario().Marshal()
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exampleCmd)
}

func exampleScenario() *scenario.Scenario {
	sc := scenario.DefaultScenario()
	stop := 10.0

	sink := scenario.DefaultSink()
	sink.Name = "Sink"
	sink.Address = transport.MustParseAddress("1.0.0.2:9")
	sink.Stop = &stop

	source := scenario.DefaultSource()
	source.Name = "Source"
	source.Node = netip.MustParseAddr("7.0.0.2")
	source.Peer = sink.Address

	sc.Sinks = append(sc.Sinks, sink)
	sc.Sources = append(sc.Sources, source)

	return &sc
}
