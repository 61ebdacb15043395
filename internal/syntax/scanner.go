// Package syntax parses TypeScript and JavaScript sources with tree-sitter and
// collects network call sites and network module imports.
package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Options configures which identifiers the scanner treats as network primitives.
type Options struct {
	FetchIdentifier  string
	NetworkModule    string
	AllowParseErrors bool
}

// Scanner finds call sites and imports. It is safe for concurrent use;
// every Scan call owns its own parser.
type Scanner struct {
	opts   Options
	logger hclog.Logger
}

func New(opts Options, logger hclog.Logger) *Scanner {
	return &Scanner{opts: opts, logger: logger}
}

// SupportedExtension reports whether path has a grammar.
func SupportedExtension(path string) bool {
	_, err := languageFor(path)
	return err == nil
}

func languageFor(path string) (*sitter.Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage(), nil
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage(), nil
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported source file extension %q", filepath.Ext(path))
	}
}

// Scan parses src and walks the whole tree.
func (s *Scanner) Scan(ctx context.Context, path string, src []byte) (*File, error) {
	lang, err := languageFor(path)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	file := &File{Path: path, HasErrors: root.HasError()}
	if file.HasErrors {
		pos := Position{Line: 1, Column: 1}
		if bad := firstErrorNode(root); bad != nil {
			pos = positionOf(bad, src)
		}
		if !s.opts.AllowParseErrors {
			return nil, &ParseError{Path: path, Line: pos.Line, Column: pos.Column}
		}
		s.logger.Warn("scanning partially parsed file", "path", path, "line", pos.Line, "column", pos.Column)
	}

	w := &walker{opts: s.opts, src: src, file: file}
	w.walk(root)
	return file, nil
}

type walker struct {
	opts Options
	src  []byte
	file *File
}

// walk visits every node depth-first; matching a call does not stop the descent
// into its arguments.
func (w *walker) walk(node *sitter.Node) {
	if node == nil || node.IsNull() {
		return
	}

	switch node.Type() {
	case "import_statement":
		w.handleImport(node)
	case "export_statement":
		w.handleExport(node)
	case "call_expression":
		w.handleCall(node)
	}

	cursor := sitter.NewTreeCursor(node)
	defer cursor.Close()

	if ok := cursor.GoToFirstChild(); ok {
		for {
			w.walk(cursor.CurrentNode())
			if ok := cursor.GoToNextSibling(); !ok {
				break
			}
		}
	}
}

func (w *walker) handleImport(node *sitter.Node) {
	source := node.ChildByFieldName("source")
	if source == nil {
		// import x = require("...")
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "import_require_clause" {
				source = child.ChildByFieldName("source")
				if source == nil {
					source = firstNamedOfType(child, "string")
				}
				break
			}
		}
	}
	w.recordImport(source, FormImport, node)
}

func (w *walker) handleExport(node *sitter.Node) {
	if source := node.ChildByFieldName("source"); source != nil {
		w.recordImport(source, FormExport, node)
	}
}

func (w *walker) recordImport(source *sitter.Node, form ImportForm, at *sitter.Node) {
	if source == nil || source.Type() != "string" {
		return
	}
	specifier := decodeStringLiteral(source.Content(w.src))
	if !w.isNetworkModule(specifier) {
		return
	}
	w.file.Imports = append(w.file.Imports, ModuleImport{
		Specifier: specifier,
		Form:      form,
		Position:  positionOf(at, w.src),
	})
}

func (w *walker) isNetworkModule(specifier string) bool {
	module := w.opts.NetworkModule
	return specifier == module || strings.HasPrefix(specifier, module+"/")
}

func (w *walker) handleCall(node *sitter.Node) {
	callee := node.ChildByFieldName("function")
	if callee == nil {
		return
	}
	first := firstArgument(node.ChildByFieldName("arguments"))

	switch callee.Type() {
	case "import":
		w.recordImport(first, FormDynamicImport, node)
	case "identifier":
		name := callee.Content(w.src)
		switch name {
		case w.opts.FetchIdentifier:
			w.recordCall(node, first, CallSite{Kind: KindBareFetch, Callee: name})
		case w.opts.NetworkModule:
			w.recordCall(node, first, CallSite{Kind: KindBareAxios, Callee: name})
		case "require":
			w.recordImport(first, FormRequire, node)
		}
	case "member_expression":
		object := callee.ChildByFieldName("object")
		property := callee.ChildByFieldName("property")
		if object == nil || property == nil || object.Type() != "identifier" {
			return
		}
		name := object.Content(w.src)
		if name != w.opts.NetworkModule {
			return
		}
		w.recordCall(node, first, CallSite{
			Kind:   KindAxiosMethod,
			Callee: name,
			Method: property.Content(w.src),
		})
	case "subscript_expression":
		object := callee.ChildByFieldName("object")
		index := callee.ChildByFieldName("index")
		if object == nil || index == nil || object.Type() != "identifier" {
			return
		}
		name := object.Content(w.src)
		if name != w.opts.NetworkModule {
			return
		}
		site := CallSite{Kind: KindAxiosMethod, Callee: name}
		if key, ok := ResolveURL(index, w.src); ok {
			site.Method = key
		} else {
			site.Method = index.Content(w.src)
			site.Computed = true
		}
		w.recordCall(node, first, site)
	}
}

func (w *walker) recordCall(node, first *sitter.Node, site CallSite) {
	site.Position = positionOf(node, w.src)
	if first != nil {
		site.Argument = first.Content(w.src)
	}
	site.URL, site.Literal = ResolveURL(first, w.src)
	w.file.Calls = append(w.file.Calls, site)
}

func firstNamedOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

// firstArgument returns the first argument expression of an arguments node.
func firstArgument(args *sitter.Node) *sitter.Node {
	if args == nil || args.Type() != "arguments" {
		return nil
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() != "comment" {
			return child
		}
	}
	return nil
}

func positionOf(node *sitter.Node, src []byte) Position {
	offset := int(node.StartByte())
	point := node.StartPoint()
	lineStart := offset - int(point.Column)
	if lineStart < 0 || offset > len(src) {
		lineStart = offset
	}
	return Position{
		Line:   int(point.Row) + 1,
		Column: utf8.RuneCount(src[lineStart:offset]) + 1,
		Offset: offset,
	}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil || node.IsNull() {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if bad := firstErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
