package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"brilt/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse textual Bril and emit the JSON form",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file") //nolint:all
		var (
			source []byte
			err    error
			name   = "<stdin>"
		)
		if path != "" {
			source, err = os.ReadFile(path)
			name = path
		} else {
			source, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}
		p, err := parser.ParseSource(name, string(source))
		if err != nil {
			return err
		}
		return p.WriteJSON(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
