package cmd

import (
	"fmt"
	"strings"

	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/report"
	"github.com/spf13/cobra"
)

var (
	plotOutput string
	plotTitle  string
)

var plotCmd = &cobra.Command{
	Use:   "plot <run.sqlite3>",
	Short: "Plot the bytes received by each sink of a recorded run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotRun(cmd, args[0], plotTitle, plotOutput)
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "throughput.png",
		"image file, the format follows the extension")
	plotCmd.Flags().StringVar(&plotTitle, "title", "",
		"title of the plot (default the database name)")
}

func plotRun(cmd *cobra.Command, dbPath, title, output string) error {
	reader, err := datarecording.NewReader(dbPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	throughput, err := report.LoadThroughput(cmd.Context(), reader)
	if err != nil {
		return err
	}

	if title == "" {
		title = strings.TrimSuffix(dbPath, ".sqlite3")
	}

	err = throughput.SavePlot(title, output)
	if err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Plotted %d sinks into %s\n",
		len(throughput.Apps()), output)

	return nil
}
