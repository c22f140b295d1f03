// Package srcstrip removes comments from Go source files.
package srcstrip

import (
	"bytes"
	"fmt"
	"go/scanner"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"unicode"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// Strip returns src without its comments. Everything else is kept byte for
// byte, with two exceptions: a block comment spanning lines is replaced by
// its newlines so automatic semicolons still land where they did, and a
// block comment between two identifier characters becomes a space.
func Strip(src []byte) ([]byte, error) {
	var errs scanner.ErrorList
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var s scanner.Scanner
	s.Init(file, src, errs.Add, scanner.ScanComments)

	out := make([]byte, 0, len(src))
	last := 0
	for {
		pos, tok, _ := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok != token.COMMENT {
			continue
		}

		start := file.Offset(pos)
		end := commentEnd(src, start)
		out = append(out, src[last:start]...)
		out = append(out, replacement(src, start, end)...)
		last = end
	}
	if errs.Len() > 0 {
		errs.Sort()
		return nil, errs.Err()
	}
	return append(out, src[last:]...), nil
}

// commentEnd returns the offset just past the comment starting at start. A
// line comment ends before its newline.
func commentEnd(src []byte, start int) int {
	if bytes.HasPrefix(src[start:], []byte("//")) {
		if i := bytes.IndexByte(src[start:], '\n'); i >= 0 {
			end := start + i
			if end > start && src[end-1] == '\r' {
				end--
			}
			return end
		}
		return len(src)
	}
	if i := bytes.Index(src[start+2:], []byte("*/")); i >= 0 {
		return start + 2 + i + 2
	}
	return len(src)
}

func replacement(src []byte, start, end int) []byte {
	if bytes.HasPrefix(src[start:], []byte("//")) {
		return nil
	}
	if n := bytes.Count(src[start:end], []byte("\n")); n > 0 {
		return bytes.Repeat([]byte("\n"), n)
	}
	if start > 0 && end < len(src) {
		before, _ := utf8.DecodeLastRune(src[:start])
		after, _ := utf8.DecodeRune(src[end:])
		if isWord(before) && isWord(after) {
			return []byte(" ")
		}
	}
	return nil
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Result reports what StripTree did to one file.
type Result struct {
	Path    string
	Before  int
	After   int
	Changed bool
	Err     error
}

// StripTree strips every file under root matching the doublestar pattern,
// for instance "**/*.go". Files are rewritten only when write is set. A file
// that fails to strip is reported in its Result and does not stop the walk.
func StripTree(root, pattern string, write bool) ([]Result, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("error globbing pattern %s in directory %s: %w", pattern, root, err)
	}

	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		if fi, err := fs.Stat(fsys, match); err == nil && !fi.Mode().IsRegular() {
			continue
		}
		results = append(results, stripFile(filepath.Join(root, match), write))
	}
	return results, nil
}

func stripFile(path string, write bool) Result {
	res := Result{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Before = len(src)

	stripped, err := Strip(src)
	if err != nil {
		res.Err = err
		return res
	}
	res.After = len(stripped)
	res.Changed = !bytes.Equal(src, stripped)

	if write && res.Changed {
		fi, err := os.Stat(path)
		if err != nil {
			res.Err = err
			return res
		}
		if err := os.WriteFile(path, stripped, fi.Mode().Perm()); err != nil {
			res.Err = err
		}
	}
	return res
}
