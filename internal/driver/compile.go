package driver

import (
	"fmt"
	"os"

	"github.com/frankischilling/bcc/internal/cache"
	"github.com/frankischilling/bcc/internal/emit"
	"github.com/frankischilling/bcc/internal/lexer"
	"github.com/frankischilling/bcc/internal/parser"
	"github.com/frankischilling/bcc/internal/sem"
)

// unitResult is everything one source file's pipeline run produces, enough
// for the caller to print diagnostics and/or feed the emitted C onward.
type unitResult struct {
	CSource       string
	Warnings      []*sem.Warning
	FromCache     bool
	CacheStoreErr error
}

// compileUnit runs one B source file through lex/parse/analyze/emit (or
// returns the cached C source for an unchanged input and flag set), per
// spec §4.8's cache-key rule.
func compileUnit(path string, opts Options, c *cache.Cache, log *logger) (*unitResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	key := cache.Key{
		SourceHash:  cache.NewSourceKey(source),
		PointerByte: opts.BytePtr,
		WordBits:    opts.WordBits,
		NoLine:      opts.NoLine,
	}

	if opts.DumpTokens {
		toks, err := lexer.TokenizeAll(string(source), path)
		if err != nil {
			return nil, err
		}
		dumpTokens(os.Stdout, toks)
	}

	if cSource, ok := c.Lookup(key); ok && !opts.DumpAST && !opts.DumpC {
		log.Step("cache hit for %s", path)
		return &unitResult{CSource: cSource, FromCache: true}, nil
	}

	log.Step("parsing %s", path)
	prog, err := parser.Parse(string(source), path)
	if err != nil {
		return nil, err
	}
	if opts.DumpAST {
		dumpAST(os.Stdout, prog)
	}

	log.Step("analyzing %s", path)
	result, err := sem.Analyze(prog, path)
	if err != nil {
		return nil, err
	}

	log.Step("emitting C for %s", path)
	e := emit.New(emit.Options{BytePtr: opts.BytePtr, WordBits: opts.WordBits, NoLine: opts.NoLine})
	cSource, err := e.EmitProgram(result.Program, path)
	if err != nil {
		return nil, err
	}
	if opts.DumpC {
		fmt.Fprintln(os.Stdout, cSource)
	}

	storeErr := c.Store(key, cSource)
	return &unitResult{CSource: cSource, Warnings: result.Warnings, CacheStoreErr: storeErr}, nil
}
