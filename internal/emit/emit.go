package emit

import (
	"fmt"
	"strings"

	"github.com/frankischilling/bcc/internal/ast"
	"github.com/frankischilling/bcc/internal/invariant"
)

// Emitter holds all per-translation-unit state for lowering a checked
// ast.Program to C: the word-model options, the name mangler, the string
// pool, and a small amount of lowering context (switch-id sequencing, the
// break-target stack). This generalizes the teacher's global-mutable-state
// codegen into a single context value per spec §9's design notes.
type Emitter struct {
	opts       Options
	mangle     *mangler
	pool       *stringPool
	switchSeq  int
	breakStack []breakTarget
}

// New constructs an Emitter for one translation unit.
func New(opts Options) *Emitter {
	return &Emitter{opts: opts, mangle: newMangler(), pool: newStringPool()}
}

func (e *Emitter) nextSwitchID() int {
	e.switchSeq++
	return e.switchSeq
}

// EmitProgram renders prog as a complete C translation unit, per the
// deterministic ordering of spec §5: string pool and storage declarations,
// then the file-scoped init routine, then function bodies, then the
// synthesized main.
func (e *Emitter) EmitProgram(prog *ast.Program, file string) (string, error) {
	e.opts.SourceFile = file
	internStrings(e.pool, prog)

	storage, initStmts, err := e.emitStorage(prog)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.WriteString(preamble(e.opts))
	out.WriteString(e.pool.EmitDecls(e.opts.wordByteWidth()))
	out.WriteString("\n")
	out.WriteString(storage)
	out.WriteString("\n")

	const initName = "__b_init_file"
	out.WriteString(emitInitRoutine(initName, initStmts))
	out.WriteString("\n")

	var userMain *ast.Function
	for i := range prog.Tops {
		top := &prog.Tops[i]
		if top.Kind != ast.TopFunction {
			continue
		}
		fnSrc := e.emitFunction(top.Function)
		out.WriteString(fnSrc)
		out.WriteString("\n")
		if top.Function.Name == "main" {
			userMain = top.Function
		}
	}

	out.WriteString(e.emitMain(initName, userMain))
	return out.String(), nil
}

func emitInitRoutine(name string, stmts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "static void %s(void) {\n", name)
	for _, s := range stmts {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// emitFunction renders a user-defined function per spec §4.6.9: a real
// B `main` is renamed to __b_user_main (emitMain supplies the actual
// `int main`); every other function keeps its mangled name, a word return
// type, and word parameters.
func (e *Emitter) emitFunction(fn *ast.Function) string {
	name := e.mangle.Mangle(fn.Name)
	if fn.Name == "main" {
		name = "__b_user_main"
	}

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = "word " + e.mangle.Mangle(p.Name)
	}
	signature := "(void)"
	if len(params) > 0 {
		signature = "(" + strings.Join(params, ", ") + ")"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "word %s%s ", name, signature)
	b.WriteString(e.lowerStmt(fn.Body))
	return b.String()
}

// emitMain generates the real C entry point: it sets up argv, runs the
// runtime and file-scoped init routines, then calls the user's main (if
// any) with whatever arity (0, 1, or 2) it was defined with.
func (e *Emitter) emitMain(initName string, userMain *ast.Function) string {
	var b strings.Builder
	b.WriteString("int main(int argc, char** argv) {\n")
	b.WriteString("__b_setargs(argc, argv);\n")
	b.WriteString("__b_init();\n")
	fmt.Fprintf(&b, "%s();\n", initName)

	if userMain != nil {
		switch len(userMain.Params) {
		case 0:
			b.WriteString("return (int)__b_user_main();\n")
		case 1:
			b.WriteString("return (int)__b_user_main((word)b_argc());\n")
		case 2:
			b.WriteString("return (int)__b_user_main((word)b_argc(), b_argv());\n")
		default:
			invariant.Unreachable("main defined with %d parameters, only 0, 1, or 2 are accepted", len(userMain.Params))
		}
	} else {
		b.WriteString("return 0;\n")
	}
	b.WriteString("}\n")
	return b.String()
}
