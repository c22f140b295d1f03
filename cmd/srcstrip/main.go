// Command srcstrip removes comments from the source files under a directory
// that match a glob pattern. Without -w it only reports what would change.
//
//	srcstrip -root ./src -pattern '**/*.go' -w
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/remiges-tech/leu/srcstrip"
)

func main() {
	root := flag.String("root", ".", "Directory to search")
	pattern := flag.String("pattern", "**/*.go", "Doublestar pattern, relative to root")
	write := flag.Bool("w", false, "Rewrite changed files in place")
	flag.Parse()

	results, err := srcstrip.StripTree(*root, *pattern, *write)
	if err != nil {
		log.Fatalf("srcstrip: %v", err)
	}
	if report(results, *write, os.Stdout) > 0 {
		os.Exit(1)
	}
}

// report prints one line per changed or failed file and a summary, and
// returns the number of failures.
func report(results []srcstrip.Result, write bool, w io.Writer) int {
	changed, failed := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s: %v\n", r.Path, r.Err)
		case r.Changed:
			changed++
			fmt.Fprintf(w, "%s: %d -> %d bytes\n", r.Path, r.Before, r.After)
		}
	}

	verb := "would change"
	if write {
		verb = "changed"
	}
	fmt.Fprintf(w, "%d files scanned, %d %s, %d failed\n", len(results), changed, verb, failed)
	return failed
}
