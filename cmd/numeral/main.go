// Command numeral prints the Romanian words for each amount given on the
// command line, one per line.
//
//	numeral 68 2401 0131001
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/remiges-tech/leu/numeral"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s amount...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(flag.Args(), os.Stdout, os.Stderr))
}

// run writes one line per amount and returns the exit status: 1 when any
// amount was rejected.
func run(amounts []string, stdout, stderr io.Writer) int {
	status := 0
	for _, a := range amounts {
		words, err := numeral.ToWordsString(a)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", a, err)
			status = 1
			continue
		}
		fmt.Fprintln(stdout, words)
	}
	return status
}
