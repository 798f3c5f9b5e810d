package cmd

import (
	"github.com/spf13/cobra"

	"brilt/internal/ssa"
)

var ssaCmd = &cobra.Command{
	Use:   "ssa",
	Short: "Convert into or out of get/set SSA form",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgs, err := readCfgs(cmd)
		if err != nil {
			return err
		}
		from, _ := cmd.Flags().GetBool("from") //nolint:all
		for _, c := range cfgs {
			if from {
				ssa.OutOfSSA(c)
			} else if err := ssa.IntoSSA(c); err != nil {
				return err
			}
		}
		return writeProgram(cfgs)
	},
}

func init() {
	ssaCmd.Flags().Bool("from", false, "destruct SSA (default constructs it)")
	rootCmd.AddCommand(ssaCmd)
}
