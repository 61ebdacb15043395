package syntax

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(allowParseErrors bool) *Scanner {
	return New(Options{
		FetchIdentifier:  "fetch",
		NetworkModule:    "axios",
		AllowParseErrors: allowParseErrors,
	}, hclog.NewNullLogger())
}

func scan(t *testing.T, path, src string) *File {
	t.Helper()
	file, err := newTestScanner(false).Scan(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return file
}

func TestScanCallKinds(t *testing.T) {
	src := `const a = await fetch("https://project.supabase.co/rest/v1/x");
axios('https://api.example.com');
axios.get(` + "`https://project.supabase.co`" + `);
axios.post(url, { a: 1 });
other.fetch("https://ignored.example.com");
`
	file := scan(t, "src/a.ts", src)

	require.Len(t, file.Calls, 4)

	assert.Equal(t, KindBareFetch, file.Calls[0].Kind)
	assert.Equal(t, "fetch()", file.Calls[0].Label())
	assert.Equal(t, Position{Line: 1, Column: 17, Offset: 16}, file.Calls[0].Position)
	assert.Equal(t, `"https://project.supabase.co/rest/v1/x"`, file.Calls[0].Argument)
	assert.True(t, file.Calls[0].Literal)
	assert.Equal(t, "https://project.supabase.co/rest/v1/x", file.Calls[0].URL)

	assert.Equal(t, KindBareAxios, file.Calls[1].Kind)
	assert.Equal(t, "axios()", file.Calls[1].Label())
	assert.Equal(t, "https://api.example.com", file.Calls[1].URL)

	assert.Equal(t, KindAxiosMethod, file.Calls[2].Kind)
	assert.Equal(t, "get", file.Calls[2].Method)
	assert.Equal(t, "axios.get()", file.Calls[2].Label())
	assert.True(t, file.Calls[2].Literal)
	assert.Equal(t, "https://project.supabase.co", file.Calls[2].URL)

	assert.Equal(t, "axios.post()", file.Calls[3].Label())
	assert.Equal(t, "url", file.Calls[3].Argument)
	assert.False(t, file.Calls[3].Literal)
}

func TestScanVisitsNestedCalls(t *testing.T) {
	src := `fetch(fetch("https://a.supabase.co"), axios.get("https://b.example.com"));`
	file := scan(t, "src/a.ts", src)

	require.Len(t, file.Calls, 3)
	assert.Equal(t, 1, file.Calls[0].Position.Column)
	assert.False(t, file.Calls[0].Literal)
	assert.Equal(t, 7, file.Calls[1].Position.Column)
	assert.Equal(t, "https://a.supabase.co", file.Calls[1].URL)
	assert.Equal(t, "axios.get()", file.Calls[2].Label())
}

func TestScanSubscriptCalls(t *testing.T) {
	src := `axios["get"]("https://evil.example");
axios[verb]("https://project.supabase.co");
config["get"]("https://ignored.example.com");
`
	file := scan(t, "src/a.ts", src)

	require.Len(t, file.Calls, 2)

	assert.Equal(t, KindAxiosMethod, file.Calls[0].Kind)
	assert.Equal(t, "get", file.Calls[0].Method)
	assert.False(t, file.Calls[0].Computed)
	assert.Equal(t, "axios.get()", file.Calls[0].Label())
	assert.Equal(t, "https://evil.example", file.Calls[0].URL)

	assert.Equal(t, "verb", file.Calls[1].Method)
	assert.True(t, file.Calls[1].Computed)
	assert.Equal(t, "axios[verb]()", file.Calls[1].Label())
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 38}, file.Calls[1].Position)
}

func TestScanImports(t *testing.T) {
	src := `import axios from "axios";
import type { AxiosInstance } from 'axios/index';
import "axios-retry";
export { default } from "axios";
const legacy = require("axios");
const lazy = await import("axios");
import api = require("axios");
import { z } from "zod";
`
	file := scan(t, "src/a.ts", src)

	var got []ModuleImport
	for _, imp := range file.Imports {
		got = append(got, ModuleImport{Specifier: imp.Specifier, Form: imp.Form, Position: Position{Line: imp.Position.Line}})
	}
	assert.Equal(t, []ModuleImport{
		{Specifier: "axios", Form: FormImport, Position: Position{Line: 1}},
		{Specifier: "axios/index", Form: FormImport, Position: Position{Line: 2}},
		{Specifier: "axios", Form: FormExport, Position: Position{Line: 4}},
		{Specifier: "axios", Form: FormRequire, Position: Position{Line: 5}},
		{Specifier: "axios", Form: FormDynamicImport, Position: Position{Line: 6}},
		{Specifier: "axios", Form: FormImport, Position: Position{Line: 7}},
	}, got)
	assert.Empty(t, file.Calls)
}

func TestScanTSXAndJavaScript(t *testing.T) {
	tsx := `export function Widget() {
  useEffect(() => { fetch("https://api.example.com/items"); }, []);
  return <div onClick={() => axios.delete(endpoint)}>x</div>;
}
`
	file := scan(t, "src/Widget.tsx", tsx)
	require.Len(t, file.Calls, 2)
	assert.Equal(t, 2, file.Calls[0].Position.Line)
	assert.Equal(t, "axios.delete()", file.Calls[1].Label())

	js := `const res = fetch('https://x.supabase.co');`
	file = scan(t, "scripts/seed.mjs", js)
	require.Len(t, file.Calls, 1)
	assert.Equal(t, "https://x.supabase.co", file.Calls[0].URL)
}

func TestScanColumnCountsCharacters(t *testing.T) {
	src := "const s = \"é\"; fetch(\"https://a.supabase.co\");\n"
	file := scan(t, "src/a.ts", src)
	require.Len(t, file.Calls, 1)
	assert.Equal(t, 16, file.Calls[0].Position.Column)
	assert.Equal(t, 16, file.Calls[0].Position.Offset)
}

func TestScanConfiguredIdentifiers(t *testing.T) {
	s := New(Options{FetchIdentifier: "request", NetworkModule: "ky"}, hclog.NewNullLogger())
	file, err := s.Scan(context.Background(), "src/a.ts", []byte(`import ky from "ky"; request("/x"); ky.get("/y"); fetch("/z");`))
	require.NoError(t, err)

	require.Len(t, file.Imports, 1)
	require.Len(t, file.Calls, 2)
	assert.Equal(t, "request()", file.Calls[0].Label())
	assert.Equal(t, "ky.get()", file.Calls[1].Label())
}

func TestScanParseErrors(t *testing.T) {
	src := "fetch(\"https://api.example.com\");\nconst = ;\n"

	_, err := newTestScanner(false).Scan(context.Background(), "src/broken.ts", []byte(src))
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "src/broken.ts", parseErr.Path)
	assert.Equal(t, 2, parseErr.Line)

	file, err := newTestScanner(true).Scan(context.Background(), "src/broken.ts", []byte(src))
	require.NoError(t, err)
	assert.True(t, file.HasErrors)
	require.Len(t, file.Calls, 1)
}

func TestScanUnsupportedExtension(t *testing.T) {
	_, err := newTestScanner(false).Scan(context.Background(), "README.md", []byte("fetch()"))
	assert.ErrorContains(t, err, "unsupported source file extension")
	assert.False(t, SupportedExtension("a.vue"))
	assert.True(t, SupportedExtension("a.CTS"))
}
