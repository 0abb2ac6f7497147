// Command ziprec recovers plaintext from damaged DEFLATE-family
// streams: it loads a DB file produced by an external packet
// scanner/guesser pair, aligns each discontinuity's inferred history
// against the surviving post-corruption literals, and renders the
// result as plain text, HTML, or a byte listing.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "dump":
		dumpCmd(args[1:])
	case "convert":
		convertCmd(args[1:])
	case "align":
		alignCmd(args[1:])
	case "batch":
		batchCmd(args[1:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s dump <db-file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        print a DB file's header statistics\n")
	fmt.Fprintf(os.Stderr, "    %s convert [-fmt plain|html|listing] [-ref <file>] <db-file> <out-file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        render a DB file's decoded bytes\n")
	fmt.Fprintf(os.Stderr, "    %s align [-aligncache <dir>] <db-file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        align every discontinuity in a DB file in place\n")
	fmt.Fprintf(os.Stderr, "    %s batch [-aligncache <dir>] <glob-pattern>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        align every DB file matching a doublestar glob\n")
}
