package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/folio/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new <dir>",
	Short: "Create a new folio site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Creating new folio site: %s\n\n", dir)

		data := scaffold.NewData(dir)
		data.Author = siteConfig.Author
		if err := scaffold.Generate(dir, data, out); err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Done! Next steps:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  cd %s\n", dir)
		fmt.Fprintln(out, "  folio index")
		fmt.Fprintln(out, "  folio serve")
		return nil
	},
}
