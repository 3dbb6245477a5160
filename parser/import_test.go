package parser_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/kr/pretty"
	"github.com/smasher164/circuit/ast"
	"github.com/smasher164/circuit/parser"
)

func TestParsePackage(t *testing.T) {
	fsys := fstest.MapFS{
		"pkg/b.cir": &fstest.MapFile{Data: []byte(`fn b() {}`)},
		"pkg/a.cir": &fstest.MapFile{Data: []byte(`
			fn a(x: Field) -> Field { x }
			fn c() {}
			`)},
		"pkg/notes.txt":   &fstest.MapFile{Data: []byte(`fn ignored() {}`)},
		"pkg/sub/d.cir":   &fstest.MapFile{Data: []byte(`fn nested() {}`)},
		"other/other.cir": &fstest.MapFile{Data: []byte(`fn other() {}`)},
	}
	pkg, err := parser.ParsePackage(fsys, "pkg")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range pkg.Files {
		for _, decl := range f.Decls {
			got = append(got, f.Filename+":"+decl.(*ast.FnDecl).Name.Name.Data)
		}
	}
	want := []string{"pkg/a.cir:a", "pkg/a.cir:c", "pkg/b.cir:b"}
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		pretty.Ldiff(t, want, got)
		t.Fail()
	}
}

func TestParsePackageErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"pkg/a.cir":   &fstest.MapFile{Data: []byte(`fn a( {}`)},
		"pkg/b.cir":   &fstest.MapFile{Data: []byte(`fn b() { 1 + }`)},
		"pkg/c.cir":   &fstest.MapFile{Data: []byte(`fn c() {}`)},
		"empty/x.txt": &fstest.MapFile{},
	}
	pkg, err := parser.ParsePackage(fsys, "pkg")
	if err == nil {
		t.Fatal("expected syntax errors")
	}
	if len(pkg.Files) != 3 {
		t.Errorf("expected partially parsed files to be kept, got %d", len(pkg.Files))
	}
	for _, name := range []string{"pkg/a.cir:1:", "pkg/b.cir:1:"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("missing %s in %v", name, err)
		}
	}

	if _, err := parser.ParsePackage(fsys, "empty"); err == nil || !strings.Contains(err.Error(), "no .cir files") {
		t.Errorf("empty directory: %v", err)
	}
	if _, err := parser.ParsePackage(fsys, "missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing directory: %v", err)
	}
}
