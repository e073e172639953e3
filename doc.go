// Package mathexec evaluates math expressions given as text.
//
// Evaluation runs in three stages. Tokenize splits the text into tokens,
// Postfix reorders them with the shunting-yard algorithm, and Context.Eval
// runs the result on a value stack. Parse combines the first two stages into
// an Expr that can be evaluated any number of times.
//
// Operators and functions come from a Registry. The default registry works
// on float64, with strings, booleans, and arrays as additional values:
//
//	1 + 2 * 3            7
//	-2^2                 -4
//	2^-2                 0.25
//	2x                   2 * x
//	max([1, 5, 3])       5
//	if(x > 0, "x", "-x") absolute value of x
//
// Registries are immutable. Clone one with options to add or remove
// operators and functions; the bigmath and decimalmath packages build
// registries for arbitrary-precision arithmetic.
//
// Executor wraps the pipeline with a variable table, a cache of compiled
// expressions, and a mutex, which is the most convenient way to evaluate
// many expressions.
package mathexec
