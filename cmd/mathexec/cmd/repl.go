package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexec"
)

func newReplCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Long: `Read expressions line by line and print their results. Each result is
stored in the variable ans. Lines of the form "let name = expr" set
variables. ":vars" lists variables, ":clear" empties the cache, and ":quit"
exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := o.setup(cmd)
			if err != nil {
				return err
			}
			out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			sc := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, promptStyle.Render("> "))
				if !sc.Scan() {
					fmt.Fprintln(out)
					return sc.Err()
				}
				line := strings.TrimSpace(sc.Text())
				switch line {
				case "":
					continue
				case ":quit", ":q", "exit":
					return nil
				case ":vars":
					vars := ex.Vars()
					names := make([]string, 0, len(vars))
					for k := range vars {
						names = append(names, k)
					}
					sort.Strings(names)
					for _, k := range names {
						fmt.Fprintf(out, "%s = %v\n", k, display(vars[k]))
					}
					continue
				case ":clear":
					ex.ClearCache()
					continue
				}
				name := "ans"
				if rest, ok := strings.CutPrefix(line, "let "); ok {
					n, expr, ok := strings.Cut(rest, "=")
					if !ok {
						printErr(stderr, errors.New(`expected "let name = expr"`))
						continue
					}
					name, line = strings.TrimSpace(n), expr
				}
				v, err := ex.Execute(line)
				if err != nil {
					printErr(stderr, err)
					if m := undefined(ex, line); len(m) > 0 {
						fmt.Fprintln(stderr, mutedStyle.Render("undefined: "+strings.Join(m, ", ")))
					}
					continue
				}
				if err := ex.SetVar(name, v); err != nil {
					printErr(stderr, err)
				}
				fmt.Fprintln(out, resultStyle.Render(fmt.Sprint(display(v))))
			}
		},
	}
}

// undefined lists the variables an expression uses that the executor does
// not define.
func undefined(ex *mathexec.Executor, expr string) []string {
	p, err := ex.Compile(expr)
	if err != nil {
		return nil
	}
	var missing []string
	for _, name := range p.Vars() {
		if !ex.VarExists(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
