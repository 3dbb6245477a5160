package names

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smasher164/circuit/hir"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Env is one lexical scope. Lookups walk the Parent chain.
type Env struct {
	Parent  *Env
	Symbols map[string]Bind
}

func NewEnv(parent *Env) *Env {
	return &Env{
		Parent:  parent,
		Symbols: make(map[string]Bind),
	}
}

func (e *Env) AddScope() *Env {
	return NewEnv(e)
}

// Add binds name in e. A name may be bound once per scope; "_" is never bound.
func (e *Env) Add(name string, bind Bind) (Bind, bool) {
	if name == "_" {
		return nil, true
	}
	if prev, ok := e.Symbols[name]; ok {
		return prev, false
	}
	e.Symbols[name] = bind
	return bind, true
}

// Shadow binds name in e, hiding any earlier binding of the same name.
func (e *Env) Shadow(name string, bind Bind) {
	if name == "_" {
		return
	}
	e.Symbols[name] = bind
}

func (e *Env) LookupLocal(name string) (Bind, bool) {
	b, ok := e.Symbols[name]
	return b, ok
}

func (e *Env) LookupStack(name string) (b Bind, p *Env, ok bool) {
	p = e
	for p != nil {
		if b, ok = p.LookupLocal(name); ok {
			return b, p, ok
		}
		p = p.Parent
	}
	return nil, nil, false
}

func envString(buf io.Writer, e *Env) {
	if e.Parent != nil {
		envString(buf, e.Parent)
		fmt.Fprint(buf, "↑\n")
	}
	if len(e.Symbols) == 0 {
		fmt.Fprintf(buf, "(empty)\n")
		return
	}
	keys := maps.Keys(e.Symbols)
	slices.Sort(keys)
	for _, name := range keys {
		fmt.Fprintf(buf, "%s:\t%#v\n", name, e.Symbols[name])
	}
}

func (e *Env) String() string {
	sb := new(strings.Builder)
	buf := tabwriter.NewWriter(sb, 0, 0, 1, ' ', 0)
	envString(buf, e)
	buf.Flush()
	return sb.String()
}

type Bind interface {
	isBind()
}

// VarBind is a value binding: a parameter, let, const or loop variable.
type VarBind struct {
	Def hir.IdentID
}

func (VarBind) isBind() {}

type FuncBind struct {
	ID hir.FuncID
}

func (FuncBind) isBind() {}
