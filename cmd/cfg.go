package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"brilt/internal/analysis"
	"brilt/internal/dot"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg",
	Short: "Build CFGs and render them as a Graphviz digraph",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgs, err := readCfgs(cmd)
		if err != nil {
			return err
		}
		withDom, _ := cmd.Flags().GetBool("dom") //nolint:all
		if !withDom {
			fmt.Print(dot.Render(cfgs))
			return nil
		}
		for _, c := range cfgs {
			fmt.Print(dot.RenderWithDom(c, analysis.BuildDomTree(c)))
		}
		return nil
	},
}

func init() {
	cfgCmd.Flags().Bool("dom", false, "overlay the dominator tree")
	rootCmd.AddCommand(cfgCmd)
}
