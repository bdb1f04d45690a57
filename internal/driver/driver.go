package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/frankischilling/bcc/internal/cache"
)

// Run executes the whole pipeline for opts, writing diagnostics/dumps to
// stdout/stderr, and returns the process exit code per spec §6: 0 success,
// 1 any error, 2 missing input.
func Run(opts Options, stdout, stderr io.Writer) int {
	if len(opts.Inputs) == 0 {
		fmt.Fprintln(stderr, "bcc: no input files")
		return 2
	}
	if opts.singleFileOnly() && len(opts.Inputs) > 1 {
		fmt.Fprintln(stderr, "bcc: -S, --asm, -E, and the --dump-* flags accept only a single input file")
		return 1
	}

	log := newLogger(stderr, opts.Verbose)
	cc := resolveCC(opts.CC)

	if err := checkCCMinVersion(cc, opts.CCMinVersion); err != nil {
		printError(stderr, err, opts.VerboseErrors)
		return 1
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = cache.DefaultDir()
	}
	cch := cache.New(cacheDir, opts.NoCache)

	// The runtime library only needs compiling once up front for the
	// modes that actually invoke the downstream compiler (not for
	// -S/-E/--dump-*, which stop before ever calling cc).
	var rt *runtimeBuild
	if !opts.EmitCStdout && !opts.EmitCToOut && !opts.DumpTokens && !opts.DumpAST && !opts.DumpC {
		built, err := prepareRuntime(cc, opts, cacheDir, stdout, stderr)
		if err != nil {
			printError(stderr, err, opts.VerboseErrors)
			return 1
		}
		rt = built
	}

	var objects []string
	for _, input := range opts.Inputs {
		result, err := compileUnit(input, opts, cch, log)
		if err != nil {
			printError(stderr, err, opts.VerboseErrors)
			return 1
		}
		if result.CacheStoreErr != nil {
			log.Warn(fmt.Sprintf("could not write compile cache: %v", result.CacheStoreErr))
		}
		printWarnings(log, result.Warnings, opts.VerboseErrors)
		if opts.WarnError && len(result.Warnings) > 0 {
			fmt.Fprintln(stderr, "bcc: warnings treated as errors (-Werror)")
			return 1
		}

		switch {
		case opts.EmitCStdout:
			fmt.Fprintln(stdout, result.CSource)
			return 0

		case opts.EmitAsm:
			return compileToAsm(cc, input, result.CSource, rt.headerDir, stdout, stderr)

		case opts.EmitCToOut:
			out := outputOrDefault(opts.Output)
			if err := os.WriteFile(out, []byte(result.CSource), 0o644); err != nil {
				printError(stderr, err, opts.VerboseErrors)
				return 1
			}
			return 0

		case opts.DumpTokens, opts.DumpAST, opts.DumpC:
			// The dumps themselves were already printed inside compileUnit;
			// these modes stop here rather than going on to invoke cc.
			return 0
		}

		objPath, code := compileOneObject(cc, input, result.CSource, rt.headerDir, opts, log, stderr)
		if code != 0 {
			return code
		}
		objects = append(objects, objPath)
	}

	if opts.CompileOnly {
		return 0
	}

	objects = append(objects, rt.objPath)

	log.Step("linking %s", outputOrDefault(opts.Output))
	code, err := runCC(cc, linkArgs(opts, objects), stdout, stderr)
	for _, obj := range objects {
		if obj != rt.objPath {
			os.Remove(obj)
		}
	}
	if err != nil {
		printError(stderr, err, opts.VerboseErrors)
	}
	return code
}

// compileToAsm runs the downstream compiler with -S over a temp C file and
// streams the assembly to stdout, per spec's "--asm: emit assembly to
// stdout (single file only)".
func compileToAsm(cc, input, cSource, runtimeHeaderDir string, stdout, stderr io.Writer) int {
	cPath, cleanup, err := writeTempC(input, cSource)
	if err != nil {
		printError(stderr, err, false)
		return 1
	}
	defer cleanup()

	code, err := runCC(cc, asmArgs(cPath, runtimeHeaderDir), stdout, stderr)
	if err != nil {
		printError(stderr, err, false)
	}
	return code
}

// compileOneObject writes input's emitted C to a temp file, compiles it to
// an object file, and handles the --keep-c/--emit-c retention rule. On
// downstream-compiler failure the temp C file is retained (spec §5: "or if
// the downstream C compiler fails — in which case paths are printed so the
// user can inspect") and its path printed.
func compileOneObject(cc, input, cSource, runtimeHeaderDir string, opts Options, log *logger, stderr io.Writer) (objPath string, exitCode int) {
	cPath, cleanup, err := writeTempC(input, cSource)
	if err != nil {
		printError(stderr, err, opts.VerboseErrors)
		return "", 1
	}

	objPath = objectPath(input)
	log.Step("compiling %s", cPath)
	code, ccErr := runCC(cc, compileArgs(opts, cPath, objPath, runtimeHeaderDir), os.Stdout, stderr)
	if ccErr != nil || code != 0 {
		fmt.Fprintf(stderr, "bcc: downstream compiler failed; generated C retained at %s\n", cPath)
		if ccErr != nil {
			printError(stderr, ccErr, opts.VerboseErrors)
		}
		if code == 0 {
			code = 1
		}
		return "", code
	}

	if opts.KeepC || opts.EmitCNaming {
		final := finalCPath(input)
		if err := os.Rename(cPath, final); err != nil {
			log.Warn(fmt.Sprintf("could not retain C file %s: %v", cPath, err))
			cleanup()
		}
	} else {
		cleanup()
	}
	return objPath, 0
}
