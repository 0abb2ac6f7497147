package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziprecover/ziprec/internal/aligncache"
	"github.com/ziprecover/ziprec/internal/dbyte"
	"github.com/ziprecover/ziprec/internal/decode"
	"github.com/ziprecover/ziprec/internal/tailcache"
)

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if len(f) == 0 || f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func parseFormat(name string) dbyte.WriteFormat {
	switch name {
	case "plain":
		return dbyte.FormatPlainText
	case "html":
		return dbyte.FormatHTML
	case "listing":
		return dbyte.FormatListing
	case "none":
		return dbyte.FormatNone
	}
	exitf("unknown -fmt %q (want plain, html, listing, or none)\n", name)
	return dbyte.FormatNone
}

func openDB(path string) (*os.File, error) {
	return os.Open(path)
}

func backingOpener(path string) decode.BackingOpener {
	return func() (decode.BackingFile, error) {
		return os.OpenFile(path, os.O_RDWR, 0)
	}
}

// dumpCmd prints the summary statistics recorded in a DB file's
// header without decoding any bytes.
func dumpCmd(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	deflate64 := fs.Bool("deflate64", false, "use the 64KiB reference window")
	fs.Parse(args)
	if fs.NArg() != 1 {
		exitf("usage: ziprec dump <db-file>\n")
	}
	path := fs.Arg(0)

	f, err := openDB(path)
	if err != nil {
		exitf("opening %s: %s\n", path, err)
	}
	defer f.Close()

	b := decode.New(nil, dbyte.FormatDB, '?', filepath.Base(path), *deflate64, false)
	if err := b.OpenInputFile(f, path); err != nil {
		exitf("reading %s: %s\n", path, err)
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  reference window:  %d\n", b.ReferenceWindow())
	fmt.Printf("  total bytes:       %d\n", b.TotalBytes())
	fmt.Printf("  discontinuities:   %d\n", b.Discontinuities())
	fmt.Printf("  replacement slots: %d\n", b.NumReplacements())
	fmt.Printf("  highest replaced:  %d\n", b.HighestReplaced())
}

// convertCmd renders a DB file's decoded bytes (with any alignment
// replacements already applied) into the chosen output format.
func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	format := fs.String("fmt", "plain", "output format: plain, html, listing")
	unknown := fs.String("unknown", "?", "single-character replacement for unresolved wildcards")
	reference := fs.String("ref", "", "reference text file to compare against (enables test-mode bracketing)")
	deflate64 := fs.Bool("deflate64", false, "use the 64KiB reference window")
	predecessors := fs.Bool("predecessors", false, "include the reconstructed pre-corruption history for each discontinuity")
	fs.Parse(args)
	if fs.NArg() != 2 {
		exitf("usage: ziprec convert <db-file> <output-file>\n")
	}
	if len(*unknown) != 1 {
		exitf("-unknown must be exactly one character\n")
	}
	dbPath, outPath := fs.Arg(0), fs.Arg(1)

	f, err := openDB(dbPath)
	if err != nil {
		exitf("opening %s: %s\n", dbPath, err)
	}
	defer f.Close()

	testMode := *reference != ""
	b := decode.New(nil, parseFormat(*format), (*unknown)[0], filepath.Base(dbPath), *deflate64, testMode)
	if err := b.OpenInputFile(f, dbPath); err != nil {
		exitf("reading %s: %s\n", dbPath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		exitf("creating %s: %s\n", outPath, err)
	}
	defer out.Close()

	var ref io.Reader
	if testMode {
		refFile, err := os.Open(*reference)
		if err != nil {
			exitf("opening reference %s: %s\n", *reference, err)
		}
		defer refFile.Close()
		ref = refFile
	}

	stats, err := b.ApplyReplacements(out, *predecessors, ref)
	if err != nil {
		exitf("converting %s: %s\n", dbPath, err)
	}
	if stats.TotalBytes > 0 {
		logf("compared %d bytes against reference, %d identical, %d case-folded correct\n",
			stats.TotalBytes, stats.IdenticalBytes, stats.ReconstructedCorrectFold)
	}
}

// alignCmd runs discontinuity alignment over every discontinuity in a
// DB file in place, writing each aligned discontinuity marker's new
// size back to it. The rewritten replacement table is held in memory
// only and is not written back to the file.
func alignCmd(args []string) {
	fs := flag.NewFlagSet("align", flag.ExitOnError)
	deflate64 := fs.Bool("deflate64", false, "use the 64KiB reference window")
	cacheDir := fs.String("aligncache", "", "directory for a persistent pebble cache of alignment results")
	tailSize := fs.Int("tailcache", 0, "entries to keep in an in-memory tail-snapshot cache (0 disables)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		exitf("usage: ziprec align <db-file>\n")
	}
	path := fs.Arg(0)

	if err := alignFile(path, *deflate64, *cacheDir, *tailSize); err != nil {
		exitf("aligning %s: %s\n", path, err)
	}
}

func alignFile(path string, deflate64 bool, cacheDir string, tailSize int) error {
	f, err := openDB(path)
	if err != nil {
		return err
	}
	defer f.Close()

	b := decode.New(nil, dbyte.FormatDB, '?', filepath.Base(path), deflate64, false)
	if err := b.OpenInputFile(f, path); err != nil {
		return err
	}
	if _, err := b.LoadBytes(); err != nil {
		return err
	}
	b.SetBackingOpener(backingOpener(path))

	if cacheDir != "" {
		ac, err := aligncache.Open(cacheDir)
		if err != nil {
			return err
		}
		defer ac.Close()
		b.SetAlignCache(ac)
	}
	if tailSize > 0 {
		b.SetTailCache(tailcache.New(tailSize), path)
	}

	ok, err := b.AlignDiscontinuities()
	if err != nil {
		return err
	}
	if !ok {
		logf("%s: alignment failed, leaving remaining wildcards in place\n", path)
	}
	return nil
}

// batchCmd expands a doublestar glob (e.g. "recovered/**/*.zrdb") and
// runs alignment over every matching DB file in turn, mirroring
// ziprecui.C's directory-recursion mode.
func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	deflate64 := fs.Bool("deflate64", false, "use the 64KiB reference window")
	cacheDir := fs.String("aligncache", "", "directory for a persistent pebble cache of alignment results")
	tailSize := fs.Int("tailcache", 0, "entries to keep in an in-memory tail-snapshot cache (0 disables)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		exitf("usage: ziprec batch <glob-pattern>\n")
	}
	pattern := fs.Arg(0)

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		exitf("bad pattern %q: %s\n", pattern, err)
	}
	if len(matches) == 0 {
		logf("batch: %q matched nothing\n", pattern)
		return
	}

	failed := 0
	for _, path := range matches {
		logf("aligning %s\n", path)
		if err := alignFile(path, *deflate64, *cacheDir, *tailSize); err != nil {
			logf("%s: %s\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		exitf("batch: %d of %d files failed\n", failed, len(matches))
	}
}
