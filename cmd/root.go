// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"brilt/internal/bril"
	"brilt/internal/cfg"
	brilterrors "brilt/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:           "brilt",
	Short:         "brilt - CFG analyses and optimizations for Bril programs",
	Long:          "brilt reads a JSON-serialized Bril program, runs the selected analysis or transformation, and writes the result to stdout.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbosity, _ := cmd.Flags().GetCount("verbose") //nolint:all
		commonlog.Configure(verbosity, nil)
	},
}

// Execute runs the CLI; errors are reported here, the caller only picks
// the exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, brilterrors.Reporter{}.FormatError(err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "", "read the program from this file instead of stdin")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity")
}

// readProgram loads the input program from -f or stdin.
func readProgram(cmd *cobra.Command) (*bril.Program, error) {
	path, _ := cmd.Flags().GetString("file") //nolint:all
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	p, err := bril.ReadProgram(r)
	if err != nil {
		return nil, brilterrors.MalformedProgramf("%s", err)
	}
	return p, nil
}

// readCfgs loads the input program and builds one CFG per function.
func readCfgs(cmd *cobra.Command) ([]*cfg.Cfg, error) {
	p, err := readProgram(cmd)
	if err != nil {
		return nil, err
	}
	return cfg.FromProgram(p)
}

func writeProgram(cfgs []*cfg.Cfg) error {
	return cfg.IntoProgram(cfgs).WriteJSON(os.Stdout)
}
