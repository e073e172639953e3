package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexec"
)

var errFailed = errors.New("some expressions failed")

func newEvalCmd(o *options) *cobra.Command {
	var (
		verb   string
		inname string
		echo   bool
	)
	c := &cobra.Command{
		Use:   "eval [expr...]",
		Short: "Evaluate expressions",
		Long: `Evaluate each argument as an expression. With no arguments, or with
--in, evaluate each non-empty line of the input instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := o.setup(cmd)
			if err != nil {
				return err
			}
			exprs := args
			if inname != "" || len(args) == 0 {
				lines, err := readLines(cmd, inname)
				if err != nil {
					return err
				}
				exprs = append(exprs, lines...)
			}
			out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			var failed bool
			for _, expr := range exprs {
				if echo {
					if err := explain(ex, out, expr); err != nil {
						printErr(stderr, err)
						failed = true
						continue
					}
				}
				v, err := ex.Execute(expr)
				if err != nil {
					printErr(stderr, err)
					failed = true
					continue
				}
				fmt.Fprintln(out, resultStyle.Render(fmt.Sprintf(verb, display(v))))
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
	c.Flags().StringVar(&verb, "fmt", "%v", "result formatting string")
	c.Flags().StringVar(&inname, "in", "", `input file, or "-" for stdin`)
	c.Flags().BoolVar(&echo, "echo", false, "print the grouping of each expression before its result")
	return c
}

// readLines reads the non-empty lines of the named file or stdin.
func readLines(cmd *cobra.Command, name string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			lines = append(lines, s)
		}
	}
	return lines, sc.Err()
}

// display converts results for printing with fmt verbs. Arrays and strings
// use their expression forms; other values print as they are.
func display(v mathexec.Value) any {
	switch v := v.(type) {
	case []mathexec.Value:
		return mathexec.Format(v)
	case nil:
		return "null"
	}
	return v
}

func explain(ex *mathexec.Executor, w io.Writer, expr string) error {
	p, err := ex.Compile(expr)
	if err != nil {
		return err
	}
	s, err := mathexec.Explain(p.Postfix(), ex.Registry())
	if err != nil {
		return err
	}
	fmt.Fprint(w, mutedStyle.Render(s+" : "))
	return nil
}
