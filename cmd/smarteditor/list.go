package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codynego/smarteditor/internal/adjust"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the creative presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLABEL\tVALUES")
		for _, p := range adjust.Presets() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Label, formatValues(p.Values))
		}
		return w.Flush()
	},
}

var slidersCmd = &cobra.Command{
	Use:   "sliders",
	Short: "List the adjustment sliders and their ranges",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMIN\tMAX\tNEUTRAL\tUNIT")
		for _, sl := range adjust.Sliders() {
			fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%s\n", sl.Name, sl.Min, sl.Max, sl.Neutral, sl.Unit)
		}
		return w.Flush()
	},
}

func formatValues(values map[string]float64) string {
	if len(values) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, values[k])
	}
	return strings.Join(parts, " ")
}
