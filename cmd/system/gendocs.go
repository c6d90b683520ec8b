package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const defaultDocsDir = "docs/cli"

func NewGenDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gendocs",
		Short: "Write Markdown reference pages for the salonora commands",
		Long: `Write one Markdown page per salonora command (http start, system init,
system migrate, system sweep, ...) into --outdir, default ./docs/cli.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outDir, _ := cmd.Flags().GetString("outdir")
			if outDir == "" {
				outDir = defaultDocsDir
			}
			dir, err := filepath.Abs(outDir)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", outDir, err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %q: %w", dir, err)
			}

			root := cmd.Root()
			root.DisableAutoGenTag = true
			if err := doc.GenMarkdownTreeCustom(root, dir, docTitle, func(name string) string { return name }); err != nil {
				return fmt.Errorf("generate docs: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote CLI reference to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().String("outdir", defaultDocsDir, "directory for the generated pages")
	return cmd
}

// docTitle prepends a heading derived from the page name, so
// salonora_system_migrate.md opens with "salonora system migrate".
func docTitle(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return "---\ntitle: \"" + strings.ReplaceAll(name, "_", " ") + "\"\n---\n\n"
}
