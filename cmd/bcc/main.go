// Command bcc compiles B source files to a native executable by lowering
// them to C and invoking a host C compiler.
package main

import (
	"fmt"
	"os"

	"github.com/frankischilling/bcc/internal/config"
	"github.com/frankischilling/bcc/internal/driver"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		opts       driver.Options
		configPath string
	)
	opts.BytePtr = true // --byteptr defaults on, per spec §6

	root := &cobra.Command{
		Use:           "bcc [flags] file.b...",
		Short:         "compile B source to a native executable via C",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Inputs = args
			return applyConfig(cmd, &opts, configPath)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "a.out", "output executable path")
	flags.BoolVarP(&opts.EmitCStdout, "emit-c-stdout", "S", false, "emit C to stdout, no compile (single file only)")
	flags.BoolVar(&opts.EmitAsm, "asm", false, "emit assembly to stdout (single file only)")
	flags.BoolVarP(&opts.CompileOnly, "compile-only", "c", false, "compile and keep object file(s), no link")
	flags.BoolVarP(&opts.EmitCToOut, "emit-c-to-output", "E", false, "emit C to the file named by -o (single file only)")
	flags.BoolVar(&opts.KeepC, "keep-c", false, "retain generated C on success")
	flags.BoolVar(&opts.EmitCNaming, "emit-c", false, "use <input>.c naming (implies --keep-c)")
	flags.BoolVarP(&opts.Debug, "debug", "g", false, "pass debug flag to downstream compiler")
	flags.StringArrayVarP(&opts.Libs, "lib", "l", nil, "append -lNAME to link line")
	flags.StringArrayVarP(&opts.Extra, "extra", "X", nil, "pass FLAG verbatim to downstream compiler")
	flags.BoolVar(&opts.WarnAll, "Wall", false, "enable all warnings")
	flags.BoolVar(&opts.WarnNoAll, "Wno-all", false, "disable all warnings")
	flags.BoolVar(&opts.WarnExtra, "Wextra", false, "enable extra warnings")
	flags.BoolVar(&opts.WarnNoExtra, "Wno-extra", false, "disable extra warnings")
	flags.BoolVar(&opts.WarnError, "Werror", false, "treat warnings as errors")
	flags.BoolVar(&opts.BytePtr, "byteptr", true, "byte-addressed pointer mode (default on)")
	flags.BoolVar(&opts.DumpTokens, "dump-tokens", false, "dump the token stream and stop")
	flags.BoolVar(&opts.DumpAST, "dump-ast", false, "dump the parsed AST and stop")
	flags.BoolVar(&opts.DumpC, "dump-c", false, "dump the emitted C and stop")
	flags.BoolVar(&opts.NoLine, "no-line", false, "suppress #line directives in emitted C")
	flags.BoolVar(&opts.VerboseErrors, "verbose-errors", false, "long-form diagnostics instead of two-letter codes")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose pipeline logging")
	flags.StringVar(&configPath, "config", "", "load defaults from a JSON project file")
	flags.BoolVar(&opts.NoCache, "no-cache", false, "bypass the compile cache")
	flags.StringVar(&opts.CacheDir, "cache-dir", "", "override the compile cache directory")
	flags.StringVar(&opts.CCMinVersion, "cc-min-version", "", "minimum accepted downstream-compiler version")

	// The warning flags and -config are spelled with a single dash; pflag
	// reads a single dash as a run of shorthands, so give them a second one.
	args := append([]string(nil), os.Args[1:]...)
	for i, a := range args {
		if a == "--" {
			break
		}
		switch a {
		case "-Wall", "-Wno-all", "-Wextra", "-Wno-extra", "-Werror", "-config":
			args[i] = "-" + a
		}
	}
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bcc: %v\n", err)
		return 1
	}
	if len(opts.Inputs) == 0 {
		fmt.Fprintln(os.Stderr, "bcc: no input files")
		return 2
	}
	return driver.Run(opts, os.Stdout, os.Stderr)
}

// applyConfig loads -config's project file, if given, and merges its
// defaults into opts without overriding any flag the user actually set on
// the command line (SPEC_FULL.md §8.1's config-precedence property). A
// malformed or unreadable project file is a tooling error (SPEC_FULL.md
// §7.1), so it is returned rather than swallowed.
func applyConfig(cmd *cobra.Command, opts *driver.Options, configPath string) error {
	if configPath == "" {
		return nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	dst := &config.Config{CCMinVersion: opts.CCMinVersion, WordBits: opts.WordBits}
	if opts.BytePtr {
		dst.PointerModel = "byte"
	} else {
		dst.PointerModel = "word"
	}

	cfg.Apply(dst, config.Overrides{
		PointerModelSet: flags.Changed("byteptr"),
		WordBitsSet:     false, // wordBits has no direct CLI flag; -config is its only source
		CCMinVersionSet: flags.Changed("cc-min-version"),
	})

	opts.BytePtr = dst.PointerModel != "word"
	opts.WordBits = dst.WordBits
	opts.CCMinVersion = dst.CCMinVersion
	opts.Libs = append(opts.Libs, dst.Libs...)
	opts.IncludeDirs = append(opts.IncludeDirs, dst.IncludeDirs...)
	return nil
}
