package shapejson

import (
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// WhereExpr filters l with a boolean expr-lang expression evaluated per
// element. Object members are visible as variables and the element itself
// as it:
//
//	adults, err := people.WhereExpr(`age >= 18 && name != ""`)
//
// Members missing from an element evaluate to nil.
func (l *List) WhereExpr(src string) (*List, error) {
	prg, err := compileExpr(src, expr.AsBool())
	if err != nil {
		return nil, err
	}
	out := l.blank()
	for i, it := range l.items {
		res, err := expr.Run(prg, exprEnv(it))
		if err != nil {
			return nil, exprIssue(CodeInvalidType, joinPath("", strconv.Itoa(i)), err)
		}
		if ok, _ := res.(bool); ok {
			out.items = append(out.items, it)
		}
	}
	return out, nil
}

// MapExpr is Map with an expr-lang expression computing each result.
func (l *List) MapExpr(src string) (*List, error) {
	prg, err := compileExpr(src)
	if err != nil {
		return nil, err
	}
	return l.Map(func(v Value) (any, error) {
		res, err := expr.Run(prg, exprEnv(v))
		if err != nil {
			return nil, exprIssue(CodeInvalidType, "/", err)
		}
		return res, nil
	})
}

func compileExpr(src string, opts ...expr.Option) (*vm.Program, error) {
	opts = append(opts, expr.AllowUndefinedVariables())
	prg, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, exprIssue(CodeParseError, "/", err)
	}
	return prg, nil
}

// exprEnv exposes an element to expressions.
func exprEnv(v Value) map[string]any {
	env := map[string]any{"it": v.Native()}
	if o, ok := v.AsObject(); ok {
		for name, mv := range o.All() {
			if name != "it" {
				env[name] = mv.Native()
			}
		}
	}
	return env
}

func exprIssue(code, path string, err error) error {
	iss := newIssue(code, path, nil, err)
	iss[0].Message = err.Error()
	return iss
}
