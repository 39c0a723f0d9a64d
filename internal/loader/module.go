package loader

import (
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"clinic/internal/errors"
)

// Binding is one top-level name exposed by a module
type Binding struct {
	Name  string
	Value lua.LValue
}

// Callable reports whether the binding can be invoked with no arguments
func (b Binding) Callable() bool {
	fn, ok := b.Value.(*lua.LFunction)
	if !ok {
		return false
	}
	return fn.IsG || fn.Proto.NumParameters == 0
}

// Invocation is the outcome of calling one module function
type Invocation struct {
	Returned string // String form of the first return value, empty for nil
	Output   string // Text written with print during the call
	Duration time.Duration
	Err      *ScriptError
}

// Module is a loaded test module. It owns an interpreter state that must be released with Close.
type Module struct {
	Name string
	Path string

	state     *lua.LState
	env       *lua.LTable
	order     []string
	traceback lua.LValue
	capture   bool
	out       *strings.Builder
}

// Bindings returns the module's top-level bindings in declaration order.
// Names bound without a top-level statement follow in lexical order.
func (m *Module) Bindings() []Binding {
	var bindings []Binding
	seen := make(map[string]bool)
	for _, name := range m.order {
		v := m.env.RawGetString(name)
		if v == lua.LNil {
			continue
		}
		seen[name] = true
		bindings = append(bindings, Binding{Name: name, Value: v})
	}

	var rest []Binding
	m.env.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok || seen[string(key)] || string(key) == "print" {
			return
		}
		rest = append(rest, Binding{Name: string(key), Value: v})
	})
	sort.Slice(rest, func(i, j int) bool { return rest[i].Name < rest[j].Name })

	return append(bindings, rest...)
}

// Invoke calls the named top-level function with no arguments. Errors raised by the function are
// reported in the Invocation and never propagate.
func (m *Module) Invoke(name string) Invocation {
	var out strings.Builder
	m.out = &out
	defer func() { m.out = nil }()

	start := time.Now()
	inv := Invocation{}

	fn := m.env.RawGetString(name)
	if fn.Type() != lua.LTFunction {
		inv.Err = &ScriptError{Message: "attempt to call a " + fn.Type().String() + " value (" + name + ")"}
	} else {
		ret, err := m.call(fn)
		if err != nil {
			inv.Err = err
		} else if ret != lua.LNil {
			inv.Returned = ret.String()
		}
	}

	inv.Duration = time.Since(start)
	inv.Output = out.String()
	return inv
}

// Close releases the interpreter state
func (m *Module) Close() {
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// call runs fn in protected mode, capturing the traceback at the raise site
func (m *Module) call(fn lua.LValue) (ret lua.LValue, scriptErr *ScriptError) {
	L := m.state
	var trace string

	defer errors.Recover(func(cause error) {
		ret = lua.LNil
		scriptErr = &ScriptError{Message: cause.Error()}
		if m.capture {
			scriptErr.Traceback = errors.ErrorWithStackTrace(cause)
		}
	})

	handler := L.NewFunction(func(L *lua.LState) int {
		msg := L.Get(1)
		if m.capture {
			trace = m.stackTrace(L, msg)
		}
		L.Push(msg)
		return 1
	})

	top := L.GetTop()
	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
		Handler: handler,
	})
	if err != nil {
		L.SetTop(top)
		return lua.LNil, &ScriptError{Message: errorMessage(err), Traceback: trace}
	}

	ret = L.Get(-1)
	L.SetTop(top)
	return ret, nil
}

func (m *Module) stackTrace(L *lua.LState, msg lua.LValue) string {
	if m.traceback == nil || m.traceback.Type() != lua.LTFunction {
		return ""
	}
	if err := L.CallByParam(lua.P{Fn: m.traceback, NRet: 1, Protect: true}, msg); err != nil {
		return ""
	}
	trace := L.Get(-1).String()
	L.Pop(1)
	return trace
}

// print replaces the global print for the module's own code
func (m *Module) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	if m.out != nil {
		m.out.WriteString(strings.Join(parts, "\t"))
		m.out.WriteString("\n")
	}
	return 0
}

func errorMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return apiErr.Object.String()
	}
	return err.Error()
}
