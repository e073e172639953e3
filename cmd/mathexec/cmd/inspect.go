package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexec"
)

func newTokensCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens expr",
		Short: "Print the tokens of an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := o.setup(cmd)
			if err != nil {
				return err
			}
			tokens, err := mathexec.Tokenize(args[0], ex.Registry())
			if err != nil {
				return err
			}
			t := newTable("POS", "KIND", "TEXT")
			for _, tok := range tokens {
				t.Row(strconv.Itoa(tok.Pos), tok.Kind.String(), strconv.Quote(tok.Text))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func newRPNCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rpn expr",
		Short: "Print an expression in postfix order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := o.setup(cmd)
			if err != nil {
				return err
			}
			p, err := ex.Compile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rpn(p.Postfix()))
			return nil
		},
	}
}

// rpn formats postfix tokens on one line. Calls show their argument counts,
// e.g. max/3.
func rpn(postfix []mathexec.Token) string {
	v := make([]string, len(postfix))
	for i, tok := range postfix {
		switch tok.Kind {
		case mathexec.TokenFunction:
			v[i] = tok.Text + "/" + strconv.Itoa(tok.Params)
		case mathexec.TokenString:
			v[i] = strconv.Quote(tok.Text)
		default:
			v[i] = tok.Text
		}
	}
	return strings.Join(v, " ")
}

func newExplainCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain expr",
		Short: "Print an expression with every operation bracketed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := o.setup(cmd)
			if err != nil {
				return err
			}
			p, err := ex.Compile(args[0])
			if err != nil {
				return err
			}
			s, err := mathexec.Explain(p.Postfix(), ex.Registry())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newFuncsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "funcs",
		Short: "List operators and functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := o.setup(cmd)
			if err != nil {
				return err
			}
			reg := ex.Registry()
			ops := newTable("OPERATOR", "PREC", "FORM")
			for _, sym := range reg.Operators() {
				op, _ := reg.Operator(sym)
				form := "left"
				switch {
				case op.Arity() == 1:
					form = "prefix"
				case op.RightAssoc:
					form = "right"
				}
				ops.Row(sym, strconv.Itoa(op.Prec), form)
			}
			fns := newTable("FUNCTION", "ARGS")
			for _, name := range reg.Funcs() {
				fn, _ := reg.Func(name)
				fns.Row(name, arity(fn))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ops)
			fmt.Fprintln(cmd.OutOrStdout(), fns)
			return nil
		},
	}
}

// arity describes the argument counts a function accepts.
func arity(fn mathexec.Func) string {
	f, ok := fn.(*mathexec.Function)
	switch {
	case !ok:
		return "?"
	case f.Variadic:
		return strconv.Itoa(f.Required) + "+"
	case f.Required == f.Total:
		return strconv.Itoa(f.Required)
	default:
		return strconv.Itoa(f.Required) + ".." + strconv.Itoa(f.Total)
	}
}

// newTable creates a borderless table with styled headers.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
}
