package syntax

import "fmt"

// CallKind classifies a discovered network call site.
type CallKind string

const (
	KindBareFetch   CallKind = "bareFetch"
	KindBareAxios   CallKind = "bareAxios"
	KindAxiosMethod CallKind = "axiosMethod"
)

// ImportForm is the syntactic shape used to load a module.
type ImportForm string

const (
	FormImport        ImportForm = "import"
	FormExport        ImportForm = "export"
	FormRequire       ImportForm = "require"
	FormDynamicImport ImportForm = "dynamic-import"
)

// Position locates a node in its source file.
// Line and Column are 1-based, Column counts characters; Offset is the start byte.
type Position struct {
	Line   int
	Column int
	Offset int
}

// CallSite is one fetch/axios invocation. It is never mutated after the scan.
type CallSite struct {
	Kind     CallKind
	Callee   string // identifier the call goes through, e.g. "fetch" or "axios"
	Method   string // property name for KindAxiosMethod, raw index text when Computed
	Computed bool   // method selected by a non-literal subscript, e.g. axios[verb]()
	Position Position
	Argument string // raw text of the first argument, empty when there is none
	URL      string // resolved first argument, meaningful only when Literal is true
	Literal  bool
}

// Label renders the call shape for messages: fetch(), axios(), axios.get(), axios[verb]().
func (c CallSite) Label() string {
	if c.Kind == KindAxiosMethod {
		if c.Computed {
			return fmt.Sprintf("%s[%s]()", c.Callee, c.Method)
		}
		return fmt.Sprintf("%s.%s()", c.Callee, c.Method)
	}
	return c.Callee + "()"
}

// ModuleImport is a load of the network client module.
type ModuleImport struct {
	Specifier string
	Form      ImportForm
	Position  Position
}

// File holds everything the scanner found in one source file.
type File struct {
	Path      string
	Imports   []ModuleImport
	Calls     []CallSite
	HasErrors bool
}

// ParseError reports a candidate file that could not be parsed cleanly.
type ParseError struct {
	Path   string
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: syntax error at %d:%d", e.Path, e.Line, e.Column)
}
