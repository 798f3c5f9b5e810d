package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"brilt/internal/analysis"
	"brilt/internal/bril"
	brilterrors "brilt/internal/errors"
)

var uninitCmd = &cobra.Command{
	Use:   "uninit",
	Short: "Detect possibly-uninitialized variables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgs, err := readCfgs(cmd)
		if err != nil {
			return err
		}
		clean := true
		for _, c := range cfgs {
			if err := analysis.UninitReport(c); err != nil {
				clean = false
				fmt.Printf("@%s\n", c.Fn.Name)
				fmt.Println(err.(*brilterrors.Error).Message)
			}
		}
		if !clean {
			return brilterrors.Diagnosticf("uninitialized variables detected")
		}
		color.Green("no uninitialized variables")
		return nil
	},
}

var constPropCmd = &cobra.Command{
	Use:   "constprop",
	Short: "Report globally propagated constants per block",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgs, err := readCfgs(cmd)
		if err != nil {
			return err
		}
		type blockConsts struct {
			Function  string                `json:"function"`
			Block     string                `json:"block"`
			Constants map[string]bril.Value `json:"constants"`
		}
		var report []blockConsts
		for _, c := range cfgs {
			reached := analysis.ReachedConstants(c)
			for _, n := range c.Order {
				if consts, ok := reached[n]; ok {
					report = append(report, blockConsts{
						Function:  c.Fn.Name,
						Block:     c.Label(n),
						Constants: consts,
					})
				}
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(uninitCmd, constPropCmd)
}
