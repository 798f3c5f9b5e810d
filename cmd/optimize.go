package cmd

import (
	"github.com/spf13/cobra"

	"brilt/internal/dataflow"
	"brilt/internal/optim"
)

var lvnCmd = &cobra.Command{
	Use:   "lvn",
	Short: "Run local value numbering on every basic block",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgs, err := readCfgs(cmd)
		if err != nil {
			return err
		}
		fold, _ := cmd.Flags().GetBool("fold") //nolint:all
		pipeline := optim.NewPipeline(dataflow.DefaultConfig()).
			Add(optim.LVNPass{Fold: fold})
		if err := pipeline.Run(cfgs); err != nil {
			return err
		}
		return writeProgram(cfgs)
	},
}

var dceCmd = &cobra.Command{
	Use:   "dce",
	Short: "Eliminate dead code (value numbering + cross-block liveness)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgs, err := readCfgs(cmd)
		if err != nil {
			return err
		}
		global, _ := cmd.Flags().GetBool("global-consts") //nolint:all
		pipeline := optim.NewPipeline(dataflow.DefaultConfig()).
			Add(optim.DCEPass{GlobalConsts: global})
		if err := pipeline.Run(cfgs); err != nil {
			return err
		}
		return writeProgram(cfgs)
	},
}

var licmCmd = &cobra.Command{
	Use:   "licm",
	Short: "Hoist loop-invariant instructions into preheaders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfgs, err := readCfgs(cmd)
		if err != nil {
			return err
		}
		pipeline := optim.NewPipeline(dataflow.DefaultConfig()).
			Add(optim.LICMPass{})
		if err := pipeline.Run(cfgs); err != nil {
			return err
		}
		return writeProgram(cfgs)
	},
}

func init() {
	lvnCmd.Flags().Bool("fold", false, "fold constant expressions while numbering")
	dceCmd.Flags().BoolP("global-consts", "g", false, "seed value numbering with globally propagated constants")
	rootCmd.AddCommand(lvnCmd, dceCmd, licmCmd)
}
