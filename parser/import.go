package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/samber/lo"
	"github.com/smasher164/circuit/ast"
	"github.com/smasher164/circuit/lexer"
	"golang.org/x/exp/slices"
)

// ParsePackage parses every .cir file in dir. All files of a directory share
// one namespace. Files that fail to parse are still returned, holding Illegal
// nodes, alongside the joined syntax errors.
func ParsePackage(fsys fs.FS, dir string) (*ast.Package, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	filenames := lo.FilterMap(entries, func(entry fs.DirEntry, _ int) (string, bool) {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != lexer.Ext {
			return "", false
		}
		return name, true
	})
	if len(filenames) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", lexer.Ext, dir)
	}
	slices.Sort(filenames)
	pkg := &ast.Package{Dir: dir}
	var errs []error
	for _, name := range filenames {
		file, err := ParseFile(fsys, path.Join(dir, name))
		if file != nil {
			pkg.Files = append(pkg.Files, file)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return pkg, errors.Join(errs...)
}
