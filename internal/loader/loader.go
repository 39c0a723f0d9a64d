// Package loader runs Lua test modules inside isolated interpreter states and
// exposes their top-level bindings.
package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"

	"clinic/internal/config"
	"clinic/internal/errors"
)

// ScriptError is a failure raised while loading a module or invoking one of its functions
type ScriptError struct {
	Message   string
	Traceback string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Loader loads test module files
type Loader struct {
	searchPaths []string
	traceback   bool
}

// New creates a Loader resolving require() against the given search paths
func New(searchPaths []string, traceback bool) *Loader {
	return &Loader{
		searchPaths: append([]string(nil), searchPaths...),
		traceback:   traceback,
	}
}

// NameOf returns the module name for a file path
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load parses and executes the module at path. On failure the returned error is a *ScriptError
// and no state is left open.
func (l *Loader) Load(path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ScriptError{Message: err.Error(), Traceback: l.goTrace(err)}
	}

	chunk, err := parse.Parse(bytes.NewReader(src), path)
	if err != nil {
		return nil, &ScriptError{Message: err.Error()}
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, &ScriptError{Message: err.Error()}
	}

	L := lua.NewState()
	m := &Module{
		Name:  NameOf(path),
		Path:  path,
		state: L,
		order: declarationOrder(chunk),
	}
	m.traceback = L.GetField(L.GetGlobal("debug"), "traceback")
	m.capture = l.traceback

	L.SetField(L.GetGlobal("package"), "path", lua.LString(l.packagePath(path)))

	env := L.NewTable()
	meta := L.NewTable()
	meta.RawSetString("__index", L.Get(lua.GlobalsIndex))
	L.SetMetatable(env, meta)
	env.RawSetString("print", L.NewFunction(m.print))
	m.env = env

	fn := L.NewFunctionFromProto(proto)
	fn.Env = env
	if _, err := m.call(fn); err != nil {
		L.Close()
		return nil, err
	}
	return m, nil
}

// packagePath builds package.path from the search paths followed by the module's directory
func (l *Loader) packagePath(modulePath string) string {
	dirs := append(append([]string(nil), l.searchPaths...), filepath.Dir(modulePath))
	var entries []string
	for _, dir := range dirs {
		entries = append(entries,
			filepath.Join(dir, "?"+config.ModuleExt),
			filepath.Join(dir, "?", "init"+config.ModuleExt),
		)
	}
	return strings.Join(entries, ";")
}

func (l *Loader) goTrace(err error) string {
	if !l.traceback {
		return ""
	}
	return errors.StackTrace(errors.WithStackTrace(err))
}

// declarationOrder lists names bound by top-level statements in order of first appearance
func declarationOrder(chunk []ast.Stmt) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(expr ast.Expr) {
		ident, ok := expr.(*ast.IdentExpr)
		if !ok || seen[ident.Value] {
			return
		}
		seen[ident.Value] = true
		names = append(names, ident.Value)
	}

	for _, stmt := range chunk {
		switch s := stmt.(type) {
		case *ast.FuncDefStmt:
			if s.Name != nil && s.Name.Receiver == nil {
				add(s.Name.Func)
			}
		case *ast.AssignStmt:
			for _, lhs := range s.Lhs {
				add(lhs)
			}
		}
	}
	return names
}
