package mathexec_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/zephyrtronium/mathexec"
)

func newExecutor(t testing.TB, opts ...mathexec.Option) *mathexec.Executor {
	t.Helper()
	ex, err := mathexec.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return ex
}

func execute(t testing.TB, ex *mathexec.Executor, src string) mathexec.Value {
	t.Helper()
	r, err := ex.Execute(src)
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}
	return r
}

func add(l, r mathexec.Value) (mathexec.Value, error) {
	x, _ := mathexec.Float(l)
	y, _ := mathexec.Float(r)
	return x + y, nil
}

func TestExecutorDefaults(t *testing.T) {
	ex := newExecutor(t)
	if r := execute(t, ex, "pi"); r != 3.14159265359 {
		t.Errorf("pi: got %v", r)
	}
	if r := execute(t, ex, "e"); r != 2.71828182846 {
		t.Errorf("e: got %v", r)
	}
	if r := execute(t, ex, "2pi"); r != 2*3.14159265359 {
		t.Errorf("2pi: got %v", r)
	}
	if _, err := ex.Execute("2 pi"); !isErr[*mathexec.ExpressionError](err) {
		t.Errorf("a space must end the number: %v", err)
	}
	if r := execute(t, ex, "1 + 2 * 3"); r != 7.0 {
		t.Errorf("want 7, got %v", r)
	}
}

func TestExecutorVars(t *testing.T) {
	ex := newExecutor(t, mathexec.WithVars(map[string]mathexec.Value{"x": 2.0, "pi": 3.0}))
	if r := execute(t, ex, "x * pi"); r != 6.0 {
		t.Errorf("want 6, got %v", r)
	}
	if err := ex.SetVar("y", 5); err != nil {
		t.Fatal(err)
	}
	if r := execute(t, ex, "x + y"); r != 7.0 {
		t.Errorf("want 7, got %v", r)
	}
	if v, ok := ex.Var("y"); !ok || v != 5 {
		t.Errorf("Var(y): got %v, %t", v, ok)
	}
	if !ex.VarExists("x") || ex.VarExists("z") {
		t.Errorf("VarExists wrong")
	}
	vars := ex.Vars()
	vars["x"] = 100.0
	if v, _ := ex.Var("x"); v != 2.0 {
		t.Errorf("Vars returned the executor's own map")
	}
	if err := ex.SetVars(map[string]mathexec.Value{"x": 1.0, "y": 1.0}); err != nil {
		t.Fatal(err)
	}
	if r := execute(t, ex, "x + y"); r != 2.0 {
		t.Errorf("want 2, got %v", r)
	}
	ex.RemoveVar("x")
	ex.RemoveVar("never")
	if ex.VarExists("x") || !ex.VarExists("y") {
		t.Errorf("RemoveVar removed the wrong variables: %v", ex.Vars())
	}
	if _, err := ex.Execute("x"); !isErr[*mathexec.NameError](err) {
		t.Errorf("want NameError after RemoveVar, got %v", err)
	}
	ex.RemoveVars()
	if len(ex.Vars()) != 0 {
		t.Errorf("RemoveVars left %v", ex.Vars())
	}
	if _, err := ex.Execute("pi"); !isErr[*mathexec.NameError](err) {
		t.Errorf("want NameError for pi after RemoveVars, got %v", err)
	}
}

func TestExecutorValidation(t *testing.T) {
	cases := []struct {
		name string
		v    mathexec.Value
		ok   bool
	}{
		{"float", 1.5, true},
		{"int", 3, true},
		{"string", "s", true},
		{"bool", true, true},
		{"array", []mathexec.Value{1.0}, true},
		{"struct", struct{ X int }{1}, true},
		{"pointer", new(int), true},
		{"nil", nil, false},
		{"map", map[string]int{}, false},
		{"func", func() {}, false},
		{"chan", make(chan int), false},
	}
	ex := newExecutor(t)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ex.SetVar(c.name, c.v)
			if c.ok && err != nil {
				t.Errorf("rejected %#v: %v", c.v, err)
			}
			if !c.ok {
				if !isErr[*mathexec.VarError](err) {
					t.Errorf("want VarError for %#v, got %v", c.v, err)
				}
				if ex.VarExists(c.name) {
					t.Errorf("rejected value was stored")
				}
			}
		})
	}

	// SetVars is all or nothing.
	err := ex.SetVars(map[string]mathexec.Value{"good": 1.0, "bad": nil})
	if err == nil || ex.VarExists("good") {
		t.Errorf("SetVars partially applied: err=%v vars=%v", err, ex.Vars())
	}

	if _, err := mathexec.New(mathexec.WithVars(map[string]mathexec.Value{"f": func() {}})); !isErr[*mathexec.VarError](err) {
		t.Errorf("New accepted an invalid variable: %v", err)
	}

	onlyFloats := func(name string, v mathexec.Value) error {
		if _, ok := v.(float64); !ok {
			return &mathexec.VarError{Name: name, X: v}
		}
		return nil
	}
	ex.SetVarValidation(onlyFloats)
	if err := ex.SetVar("s", "text"); err == nil {
		t.Error("custom validator not applied")
	}
	if err := ex.SetVar("f", 2.0); err != nil {
		t.Errorf("custom validator rejected a float: %v", err)
	}
	ex.SetVarValidation(nil)
	if err := ex.SetVar("n", nil); err != nil {
		t.Errorf("nil validator rejected a value: %v", err)
	}

	ex = newExecutor(t, mathexec.WithVarValidation(onlyFloats), mathexec.WithVars(map[string]mathexec.Value{"x": 1.0}))
	if err := ex.SetVar("i", 1); err == nil {
		t.Error("WithVarValidation not applied")
	}
}

func TestExecutorVarNotFound(t *testing.T) {
	missing := func(name string) (mathexec.Value, bool) {
		if name == "undefined" {
			return 3.0, true
		}
		return nil, false
	}
	ex := newExecutor(t, mathexec.WithVarNotFound(missing))
	if r := execute(t, ex, "5 * undefined"); r != 15.0 {
		t.Errorf("want 15, got %v", r)
	}
	if _, err := ex.Execute("5 * other"); !isErr[*mathexec.NameError](err) {
		t.Errorf("want NameError, got %v", err)
	}
	ex.SetVarNotFound(nil)
	if _, err := ex.Execute("5 * undefined"); !isErr[*mathexec.NameError](err) {
		t.Errorf("want NameError without resolver, got %v", err)
	}
	ex.SetVarNotFound(func(name string) (mathexec.Value, bool) { return float64(len(name)), true })
	if r := execute(t, ex, "abc + de"); r != 5.0 {
		t.Errorf("want 5, got %v", r)
	}
}

func TestExecutorCache(t *testing.T) {
	ex := newExecutor(t)
	execute(t, ex, "1 + 2")
	execute(t, ex, "1 + 2")
	if n := ex.CacheLen(); n != 1 {
		t.Errorf("want 1 cached expression, got %d", n)
	}
	if _, err := ex.ExecuteUncached("3 + 4"); err != nil {
		t.Fatal(err)
	}
	if n := ex.CacheLen(); n != 1 {
		t.Errorf("uncached execution changed the cache: %d", n)
	}
	if _, err := ex.Execute("1 +"); err == nil {
		t.Fatal("no error from incomplete expression")
	}
	if n := ex.CacheLen(); n != 1 {
		t.Errorf("failed execution changed the cache: %d", n)
	}
	// Expressions that if evaluates share the cache.
	if r := execute(t, ex, "if(1, '2 + 3', 0)"); r != 5.0 {
		t.Errorf("want 5, got %v", r)
	}
	if n := ex.CacheLen(); n != 3 {
		t.Errorf("want 3 cached expressions, got %d", n)
	}
	ex.ClearCache()
	if n := ex.CacheLen(); n != 0 {
		t.Errorf("ClearCache left %d", n)
	}

	ex = newExecutor(t, mathexec.WithCache(2))
	for _, s := range []string{"1", "2", "3"} {
		execute(t, ex, s)
	}
	if n := ex.CacheLen(); n != 2 {
		t.Errorf("cache exceeded its size: %d", n)
	}

	ex = newExecutor(t, mathexec.WithoutCache())
	execute(t, ex, "1 + 2")
	if n := ex.CacheLen(); n != 0 {
		t.Errorf("disabled cache holds %d", n)
	}
	ex.ClearCache()
}

func TestExecutorRegistryEdits(t *testing.T) {
	ex := newExecutor(t)
	if r := execute(t, ex, "1 + 2 * 3"); r != 7.0 {
		t.Fatalf("want 7, got %v", r)
	}
	// Raising the precedence of + must recompile the cached expression.
	ex.AddOperator(mathexec.Binary("+", 200, false, add))
	if n := ex.CacheLen(); n != 0 {
		t.Errorf("registry change kept %d cached expressions", n)
	}
	if r := execute(t, ex, "1 + 2 * 3"); r != 9.0 {
		t.Errorf("want 9 after precedence change, got %v", r)
	}

	if _, err := ex.Execute("7 // 2"); err == nil {
		t.Error("// worked before it was defined")
	}
	ex.AddOperator(mathexec.Binary("//", 180, false, func(l, r mathexec.Value) (mathexec.Value, error) {
		x, _ := mathexec.Float(l)
		y, _ := mathexec.Float(r)
		return float64(int64(x) / int64(y)), nil
	}))
	if r := execute(t, ex, "7 // 2"); r != 3.0 {
		t.Errorf("want 3, got %v", r)
	}
	if !strings.Contains(strings.Join(ex.Operators(), " "), "//") {
		t.Errorf("Operators lacks //: %v", ex.Operators())
	}

	ex.RemoveOperator("^")
	if _, err := ex.Execute("2 ^ 3"); !isErr[*mathexec.OperatorError](err) {
		t.Errorf("want OperatorError after removing ^, got %v", err)
	}

	ex.AddFunc("concat", mathexec.Variadic(0, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteString(mathexec.Format(a))
		}
		return b.String(), nil
	}))
	if r := execute(t, ex, "concat('test', 'ing', 1)"); r != "testing1" {
		t.Errorf("want testing1, got %v", r)
	}
	ex.RemoveFunc("sin")
	if _, err := ex.Execute("sin(0)"); !isErr[*mathexec.FuncError](err) {
		t.Errorf("want FuncError after removing sin, got %v", err)
	}
	for _, name := range ex.Funcs() {
		if name == "sin" {
			t.Error("Funcs still lists sin")
		}
	}
	// Other executors and the default registry are unaffected.
	if _, err := mathexec.EvalString("sin(0) + 2 ^ 3"); err != nil {
		t.Errorf("default registry changed: %v", err)
	}
}

func TestExecutorBareOperator(t *testing.T) {
	ex := newExecutor(t)
	ex.AddOperator(&mathexec.Operator{Symbol: "#", Prec: 100})
	if _, err := ex.Execute("1 # 2"); !isErr[*mathexec.OperatorError](err) {
		t.Errorf("want OperatorError, got %v", err)
	}
	if r := execute(t, ex, "1 + 2"); r != 3.0 {
		t.Errorf("want 3, got %v", r)
	}
}

func TestExecutorDivisionByZero(t *testing.T) {
	ex := newExecutor(t)
	if _, err := ex.Execute("1 / 0"); !isErr[*mathexec.DivisionByZeroError](err) {
		t.Errorf("want DivisionByZeroError, got %v", err)
	}
	ex.SetDivisionByZeroIsZero()
	for _, s := range []string{"1 / 0", "5 % 0", "0 / 0"} {
		if r := execute(t, ex, s); r != 0.0 {
			t.Errorf("%q: want 0, got %v", s, r)
		}
	}
	if r := execute(t, ex, "6 / 4"); r != 1.5 {
		t.Errorf("ordinary division changed: %v", r)
	}
	ex = newExecutor(t, mathexec.WithDivisionByZeroIsZero())
	if r := execute(t, ex, "1 / 0 + 1"); r != 1.0 {
		t.Errorf("want 1, got %v", r)
	}
	// intdiv is a function, not an operator, so it still fails.
	if _, err := ex.Execute("intdiv(1, 0)"); !isErr[*mathexec.DivisionByZeroError](err) {
		t.Errorf("want DivisionByZeroError from intdiv, got %v", err)
	}
}

func TestExecutorCompile(t *testing.T) {
	ex := newExecutor(t, mathexec.WithVars(map[string]mathexec.Value{"x": 1.0}))
	p, err := ex.Compile("x * 10")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		if err := ex.SetVar("x", float64(i)); err != nil {
			t.Fatal(err)
		}
		r, err := ex.Eval(p)
		if err != nil {
			t.Fatal(err)
		}
		if r != float64(10*i) {
			t.Errorf("want %d, got %v", 10*i, r)
		}
	}
	if _, err := ex.Compile("(x"); !isErr[*mathexec.BracketError](err) {
		t.Errorf("want BracketError, got %v", err)
	}
}

func TestExecutorLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ex := newExecutor(t, mathexec.WithLogger(logger))
	execute(t, ex, "1 + 1")
	execute(t, ex, "1 + 1")
	ex.Execute("(")
	out := buf.String()
	for _, want := range []string{"compiled expression", "cache hit", "compile failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
}

func TestExecutorConcurrent(t *testing.T) {
	ex := newExecutor(t, mathexec.WithCache(8))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("v%d", i)
			for j := 0; j < 50; j++ {
				if err := ex.SetVar(name, float64(j)); err != nil {
					t.Error(err)
					return
				}
				r, err := ex.Execute(name + " * 2")
				if err != nil {
					t.Error(err)
					return
				}
				if r != float64(2*j) {
					t.Errorf("%s: want %d, got %v", name, 2*j, r)
					return
				}
				if j%10 == 0 {
					ex.AddFunc(name, mathexec.Niladic(func() mathexec.Value { return 1.0 }))
				}
			}
		}(i)
	}
	wg.Wait()
}
