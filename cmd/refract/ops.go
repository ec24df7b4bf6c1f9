package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnana997/refract/pkg/refactor"
)

// selectionFlags is the flag set shared by every cursor- or
// selection-driven refactoring command. Lines and columns are zero-indexed;
// the end position defaults to the start.
type selectionFlags struct {
	fs        *flag.FlagSet
	root      *string
	file      *string
	startLine *int
	startCol  *int
	endLine   *int
	endCol    *int
	apply     *bool
	verbose   *bool
}

func newSelectionFlags(name string) *selectionFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &selectionFlags{
		fs:        fs,
		root:      fs.String("workspace", "", "workspace root (defaults to current directory)"),
		file:      fs.String("file", "", "target source file (required)"),
		startLine: fs.Int("start-line", 0, "selection start line (0-indexed)"),
		startCol:  fs.Int("start-col", 0, "selection start column (0-indexed)"),
		endLine:   fs.Int("end-line", -1, "selection end line (defaults to start-line)"),
		endCol:    fs.Int("end-col", -1, "selection end column (defaults to start-col)"),
		apply:     fs.Bool("apply", false, "write changes to disk (default is a dry-run)"),
		verbose:   fs.Bool("verbose", false, "enable debug logging"),
	}
}

func (f *selectionFlags) parse(args []string) error {
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	if *f.file == "" {
		return fmt.Errorf("-file is required")
	}
	return nil
}

// run builds the context, asks buildOp for the operation, and executes it
// through the runner, printing the result.
func (f *selectionFlags) run(buildOp func(env *appEnv) (refactor.Operation, error)) error {
	env, err := newAppEnv(*f.root, *f.verbose)
	if err != nil {
		return err
	}
	defer env.close()

	path := *f.file
	if !filepath.IsAbs(path) {
		path = filepath.Join(env.root, path)
	}

	endLine := *f.endLine
	if endLine < 0 {
		endLine = *f.startLine
	}
	endCol := *f.endCol
	if endCol < 0 {
		endCol = *f.startCol
	}

	ctx := refactor.NewContext(env.root, path, env.pm, env.qm, env.logger).
		WithSelection(uint32(*f.startLine), uint32(*f.startCol), uint32(endLine), uint32(endCol))
	if err := ctx.LoadSource(); err != nil {
		return err
	}

	op, err := buildOp(env)
	if err != nil {
		return err
	}

	runner := refactor.NewRunner(env.logger)
	if !*f.apply {
		runner.WithDryRun()
	}

	result, err := runner.Run(op, ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Description)
	return nil
}

func runExtractFunction(args []string) error {
	f := newSelectionFlags("extract-function")
	name := f.fs.String("name", "", "name for the extracted function (required)")
	public := f.fs.Bool("public", false, "give the extracted function public visibility")
	async := f.fs.Bool("async", false, "make the extracted function async")
	if err := f.parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	return f.run(func(*appEnv) (refactor.Operation, error) {
		op := refactor.NewExtractFunction(*name)
		if *public {
			op.Public()
		}
		if *async {
			op.Async()
		}
		return op, nil
	})
}

func runExtractVariable(args []string) error {
	f := newSelectionFlags("extract-variable")
	name := f.fs.String("name", "", "name for the extracted variable (required)")
	replaceAll := f.fs.Bool("replace-all", false, "replace every occurrence of the expression")
	asConst := f.fs.Bool("const", false, "declare as a constant where the language distinguishes")
	if err := f.parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	return f.run(func(*appEnv) (refactor.Operation, error) {
		op := refactor.NewExtractVariable(*name)
		if *replaceAll {
			op.ReplaceAllOccurrences()
		}
		if *asConst {
			op.AsConst()
		}
		return op, nil
	})
}

func runExtractConstant(args []string) error {
	f := newSelectionFlags("extract-constant")
	name := f.fs.String("name", "", "name for the extracted constant (required)")
	public := f.fs.Bool("public", false, "give the constant public visibility")
	local := f.fs.Bool("local", false, "declare at the selection instead of file scope")
	if err := f.parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	return f.run(func(*appEnv) (refactor.Operation, error) {
		op := refactor.NewExtractConstant(*name)
		if *public {
			op.Public()
		}
		if *local {
			op.Local()
		}
		return op, nil
	})
}

func runInlineVariable(args []string) error {
	f := newSelectionFlags("inline-variable")
	keep := f.fs.Bool("keep-declaration", false, "keep the original declaration")
	if err := f.parse(args); err != nil {
		return err
	}

	return f.run(func(*appEnv) (refactor.Operation, error) {
		op := refactor.NewInlineVariable()
		if *keep {
			op.KeepDeclaration()
		}
		return op, nil
	})
}

func runInlineFunction(args []string) error {
	f := newSelectionFlags("inline-function")
	deleteAfter := f.fs.Bool("delete", false, "delete the function definition after inlining")
	if err := f.parse(args); err != nil {
		return err
	}

	return f.run(func(*appEnv) (refactor.Operation, error) {
		op := refactor.NewInlineFunction()
		if *deleteAfter {
			op.DeleteAfterInline()
		}
		return op, nil
	})
}

func runMove(args []string) error {
	f := newSelectionFlags("move")
	dest := f.fs.String("dest", "", "destination file (required)")
	reexport := f.fs.Bool("reexport", false, "leave a re-export at the original location")
	if err := f.parse(args); err != nil {
		return err
	}
	if *dest == "" {
		return fmt.Errorf("-dest is required")
	}

	return f.run(func(env *appEnv) (refactor.Operation, error) {
		destination := *dest
		if !filepath.IsAbs(destination) {
			destination = filepath.Join(env.root, destination)
		}
		op := refactor.NewMoveToFile(destination)
		if *reexport {
			op.WithReexport()
		}
		return op, nil
	})
}

func runMoveModule(args []string) error {
	f := newSelectionFlags("move-module")
	target := f.fs.String("target", "", "target module path, e.g. crate::utils (required)")
	if err := f.parse(args); err != nil {
		return err
	}
	if *target == "" {
		return fmt.Errorf("-target is required")
	}

	return f.run(func(*appEnv) (refactor.Operation, error) {
		return refactor.NewMoveBetweenModules(*target), nil
	})
}

func runChangeSignature(args []string) error {
	f := newSelectionFlags("change-signature")
	add := f.fs.String("add", "", "parameter to add as name:type or name:type=default")
	remove := f.fs.String("remove", "", "parameter to remove")
	rename := f.fs.String("rename", "", "parameter to rename as old:new")
	reorder := f.fs.String("reorder", "", "comma-separated parameter order")
	returnType := f.fs.String("return", "", "new return type")
	skipCallSites := f.fs.Bool("skip-call-sites", false, "do not update call sites")
	if err := f.parse(args); err != nil {
		return err
	}

	op := refactor.NewChangeSignature()
	changed := false

	if *add != "" {
		spec, err := parseAddSpec(*add)
		if err != nil {
			return err
		}
		op.AddParameter(spec)
		changed = true
	}
	if *remove != "" {
		op.RemoveParameter(*remove)
		changed = true
	}
	if *rename != "" {
		from, to, ok := strings.Cut(*rename, ":")
		if !ok || from == "" || to == "" {
			return fmt.Errorf("-rename must be old:new")
		}
		op.RenameParameter(from, to)
		changed = true
	}
	if *reorder != "" {
		op.ReorderParameters(strings.Split(*reorder, ","))
		changed = true
	}
	if *returnType != "" {
		op.ChangeReturnType(*returnType)
		changed = true
	}
	if !changed {
		return fmt.Errorf("no signature changes specified")
	}
	if *skipCallSites {
		op.SkipCallSiteUpdates()
	}

	return f.run(func(*appEnv) (refactor.Operation, error) {
		return op, nil
	})
}

// parseAddSpec parses name:type or name:type=default.
func parseAddSpec(s string) (refactor.ParameterSpec, error) {
	name, rest, ok := strings.Cut(s, ":")
	if !ok || name == "" || rest == "" {
		return refactor.ParameterSpec{}, fmt.Errorf("-add must be name:type or name:type=default")
	}
	typ, def, hasDefault := strings.Cut(rest, "=")
	spec := refactor.NewParameterSpec(name, typ)
	if hasDefault {
		spec = spec.WithDefault(def)
	}
	return spec, nil
}

func runSafeDelete(args []string) error {
	f := newSelectionFlags("safe-delete")
	force := f.fs.Bool("force", false, "delete even when usages remain")
	related := f.fs.Bool("related", false, "also delete related blocks, e.g. Rust impl blocks")
	searchWorkspace := f.fs.Bool("search-workspace", false, "search the whole workspace for usages")
	if err := f.parse(args); err != nil {
		return err
	}

	return f.run(func(env *appEnv) (refactor.Operation, error) {
		op := refactor.NewSafeDelete()
		if *force {
			op.Forced()
		}
		if *related {
			op.WithRelated()
		}
		if *searchWorkspace {
			op.WithSearchPaths(env.root)
		}
		return op, nil
	})
}

func runDeadCode(args []string) error {
	fs := flag.NewFlagSet("dead-code", flag.ExitOnError)
	root := fs.String("workspace", "", "workspace root (defaults to current directory)")
	file := fs.String("file", "", "target source file (required)")
	all := fs.Bool("all", false, "include every dead code category")
	searchWorkspace := fs.Bool("search-workspace", false, "also analyze the rest of the workspace")
	autoDelete := fs.Bool("delete", false, "delete the reported items from the target file")
	apply := fs.Bool("apply", false, "write deletions to disk (with -delete)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	env, err := newAppEnv(*root, *verbose)
	if err != nil {
		return err
	}
	defer env.close()

	path := *file
	if !filepath.IsAbs(path) {
		path = filepath.Join(env.root, path)
	}

	ctx := refactor.NewContext(env.root, path, env.pm, env.qm, env.logger)
	if err := ctx.LoadSource(); err != nil {
		return err
	}

	op := refactor.NewFindDeadCode()
	if *all {
		op.IncludeAll()
	}
	if *searchWorkspace {
		op.WithSearchPaths(env.root)
	}
	if *autoDelete {
		op.WithAutoDelete()
	}

	runner := refactor.NewRunner(env.logger)
	if !*apply || !*autoDelete {
		runner.WithDryRun()
	}

	result, err := runner.Run(op, ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Description)
	return nil
}
