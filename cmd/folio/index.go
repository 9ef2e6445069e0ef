package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/folio/content"
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Generate posts-index.json from the Markdown files in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := siteConfig.PostsDir
		if len(args) == 1 {
			dir = args[0]
		}
		n, err := content.WriteIndex(cmd.Context(), dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d posts into %s\n", n, filepath.Join(dir, content.IndexFile))
		return nil
	},
}
