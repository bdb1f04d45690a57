package driver

// compileArgs builds the downstream-compiler argument list for compiling
// one C file to an object file (always -c at this stage; linking, if any,
// happens afterward over all objects at once). runtimeHeaderDir, if
// non-empty, is added as a -I so the emitted "#include \"bcc_runtime.h\""
// resolves.
func compileArgs(opts Options, cPath, objPath, runtimeHeaderDir string) []string {
	args := []string{"-c", cPath, "-o", objPath}
	args = append(args, warningArgs(opts)...)
	if opts.Debug {
		args = append(args, "-g")
	}
	if runtimeHeaderDir != "" {
		args = append(args, "-I"+runtimeHeaderDir)
	}
	for _, dir := range opts.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, opts.Extra...)
	return args
}

// linkArgs builds the argument list for the final link step over every
// translation unit's object file.
func linkArgs(opts Options, objects []string) []string {
	args := append([]string{}, objects...)
	args = append(args, "-o", outputOrDefault(opts.Output))
	for _, lib := range opts.Libs {
		args = append(args, "-l"+lib)
	}
	args = append(args, warningArgs(opts)...)
	if opts.Debug {
		args = append(args, "-g")
	}
	args = append(args, opts.Extra...)
	return args
}

func outputOrDefault(out string) string {
	if out == "" {
		return "a.out"
	}
	return out
}

func warningArgs(opts Options) []string {
	var args []string
	if opts.WarnAll {
		args = append(args, "-Wall")
	}
	if opts.WarnNoAll {
		args = append(args, "-Wno-all")
	}
	if opts.WarnExtra {
		args = append(args, "-Wextra")
	}
	if opts.WarnNoExtra {
		args = append(args, "-Wno-extra")
	}
	if opts.WarnError {
		args = append(args, "-Werror")
	}
	return args
}

// asmArgs builds the argument list for emitting assembly for one C file to
// stdout (--asm).
func asmArgs(cPath, runtimeHeaderDir string) []string {
	args := []string{"-S", cPath, "-o", "-"}
	if runtimeHeaderDir != "" {
		args = append(args, "-I"+runtimeHeaderDir)
	}
	return args
}
