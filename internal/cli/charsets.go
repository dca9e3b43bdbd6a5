package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gocharset/internal/ui/pretty"
	"github.com/yaklabco/gocharset/pkg/charsets"
	"github.com/yaklabco/gocharset/pkg/config"
	"github.com/yaklabco/gocharset/pkg/convert"
)

type charsetsFlags struct {
	json bool
}

func newCharsetsCommand() *cobra.Command {
	flags := &charsetsFlags{}

	cmd := &cobra.Command{
		Use:   "charsets [filter]",
		Short: "List supported character encodings",
		Long: `List every encoding gocharset can read and write, with its aliases.
An optional filter keeps the encodings whose name or aliases contain it.
The default conversion target is marked.

Examples:
  gocharset charsets
  gocharset charsets 8859
  gocharset charsets --json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCharsets(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "output as JSON")

	return cmd
}

func runCharsets(cmd *cobra.Command, args []string, flags *charsetsFlags) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	list := charsets.Filter(charsets.List(), query)

	out := cmd.OutOrStdout()
	if flags.json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(list); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	}

	if len(list) == 0 {
		fmt.Fprintf(out, "No charsets match %q\n", query)
		return nil
	}

	workDir, err := workingDir()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, workDir, &config.Config{})
	if err != nil {
		return err
	}

	rows := make([]pretty.TableRow, 0, len(list))
	for _, c := range list {
		current := convert.SameCharset(c.Name, cfg.LastCharset)
		marker := ""
		if current {
			marker = "*"
		}
		rows = append(rows, pretty.TableRow{
			Cells:       []string{marker, c.Name, strings.Join(c.Aliases, ", ")},
			Highlighted: current,
		})
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	table := pretty.NewTableFormatter(styles, terminalWidth(out))
	fmt.Fprint(out, table.Format([]string{"", "CHARSET", "ALIASES"}, rows))
	fmt.Fprintf(out, "\n%d charsets\n", len(list))

	return nil
}

// terminalWidth returns the width of w when it is a terminal, else 0.
func terminalWidth(w any) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
