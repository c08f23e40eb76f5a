package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/proxaccel/internal/accel"
)

var schemeDescriptions = map[string]string{
	accel.NameDummy:             "no acceleration",
	accel.NameBacktracking:      "shrinks the step until the quadratic majorant holds",
	accel.NameFISTA:             "Nesterov momentum with t_{n+1} = (1 + sqrt(1 + 4 t_n^2)) / 2",
	accel.NameFISTABacktracking: "FISTA momentum with backtracking step sizes",
	accel.NameRNA:               "regularized nonlinear acceleration every k+1 iterations",
}

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List the available acceleration schemes",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION")
		for _, name := range accel.Names() {
			fmt.Fprintf(w, "%s\t%s\n", name, schemeDescriptions[name])
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(schemesCmd)
}
