package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gnana997/refract/pkg/mcp"
	"github.com/gnana997/refract/pkg/mcplog"
	"github.com/gnana997/refract/pkg/parser"
	"github.com/gnana997/refract/pkg/parser/queries"
	"github.com/gnana997/refract/pkg/util"
	"github.com/gnana997/refract/pkg/workspace"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "extract-function":
		err = runExtractFunction(args)
	case "extract-variable":
		err = runExtractVariable(args)
	case "extract-constant":
		err = runExtractConstant(args)
	case "inline-variable":
		err = runInlineVariable(args)
	case "inline-function":
		err = runInlineFunction(args)
	case "move":
		err = runMove(args)
	case "move-module":
		err = runMoveModule(args)
	case "change-signature":
		err = runChangeSignature(args)
	case "safe-delete":
		err = runSafeDelete(args)
	case "dead-code":
		err = runDeadCode(args)
	case "references":
		err = runReferences(args)
	case "scan":
		err = runScan(args)
	case "watch":
		err = runWatch(args)
	case "serve":
		err = runServe(args)
	case "setup":
		runSetup(args)
	case "version":
		fmt.Printf("refract %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: refract <command> [flags]")
	fmt.Println()
	fmt.Println("Refactoring commands (use -apply to write changes, default is a dry-run):")
	fmt.Println("  extract-function   Extract selected code into a new function")
	fmt.Println("  extract-variable   Extract selected expression into a variable")
	fmt.Println("  extract-constant   Extract selected literal into a constant")
	fmt.Println("  inline-variable    Inline the variable at the cursor")
	fmt.Println("  inline-function    Inline the function at the cursor")
	fmt.Println("  move               Move the symbol at the cursor to another file")
	fmt.Println("  move-module        Move the Rust symbol at the cursor to another module")
	fmt.Println("  change-signature   Change the signature of the function at the cursor")
	fmt.Println("  safe-delete        Delete the symbol at the cursor if unused")
	fmt.Println("  dead-code          Report dead code in a file")
	fmt.Println()
	fmt.Println("Workspace commands:")
	fmt.Println("  references         Find references to a binding across the workspace")
	fmt.Println("  scan               Analyze every source file under the workspace root")
	fmt.Println("  watch              Scan, then re-analyze files as they change")
	fmt.Println("  serve              Start the MCP server on stdin/stdout")
	fmt.Println("  setup              Register the MCP server with detected AI agents")
	fmt.Println()
	fmt.Println("  version            Print version")
	fmt.Println("  help               Show this help message")
}

// appEnv bundles the shared managers every command needs.
type appEnv struct {
	root   string
	cfg    *ProjectConfig
	logger *slog.Logger
	pm     *parser.ParserManager
	qm     *queries.QueryManager
}

// newAppEnv resolves the workspace root, loads the project config, and
// builds the parser and query managers.
func newAppEnv(root string, verbose bool) (*appEnv, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	cfg, err := loadProjectConfig(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	logCfg := util.LoggerConfig{
		Level:  util.LevelWarn,
		Format: util.FormatText,
		Output: os.Stderr,
	}
	if verbose {
		logCfg.Level = util.LevelDebug
	}
	if cfg != nil {
		if cfg.LogLevel != "" && !verbose {
			logCfg.Level = util.LogLevel(cfg.LogLevel)
		}
		if cfg.LogFormat != "" {
			logCfg.Format = util.LogFormat(cfg.LogFormat)
		}
	}
	logger := util.NewLogger(logCfg)

	pm := parser.NewParserManager(logger)

	return &appEnv{
		root:   root,
		cfg:    cfg,
		logger: logger,
		pm:     pm,
		qm:     queries.NewQueryManager(pm, logger),
	}, nil
}

func (e *appEnv) close() {
	e.qm.Close()
	e.pm.Close()
}

func (e *appEnv) newWorkspace() (*workspace.Workspace, error) {
	return workspace.New(e.root, e.pm, e.qm, e.logger, e.cfg.workspaceConfig())
}

// --- workspace commands ---

func runReferences(args []string) error {
	fs := flag.NewFlagSet("references", flag.ExitOnError)
	root := fs.String("workspace", "", "workspace root (defaults to current directory)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: refract references [flags] <name>")
	}
	name := fs.Arg(0)

	env, err := newAppEnv(*root, *verbose)
	if err != nil {
		return err
	}
	defer env.close()

	ws, err := env.newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if _, err := workspace.NewScanner(ws, env.logger).Scan(env.cfg.scanOptions(), nil); err != nil {
		return err
	}

	info, err := ws.Usages(name)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d reference(s) to '%s'\n", info.Count(), name)
	fmt.Printf("Defined in %s:%d\n", info.Binding.File, info.Binding.DefinitionRange.Start.Line+1)
	for _, ref := range info.Usages {
		fmt.Printf("- %s:%d:%d [%s, %s]\n",
			ref.File,
			ref.Range.Start.Line+1,
			ref.Range.Start.Character+1,
			ref.Kind,
			ref.Confidence)
	}
	return nil
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	root := fs.String("workspace", "", "workspace root (defaults to current directory)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	progress := fs.Bool("progress", false, "print per-file progress")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newAppEnv(*root, *verbose)
	if err != nil {
		return err
	}
	defer env.close()

	ws, err := env.newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var callback workspace.ProgressCallback
	if *progress {
		callback = func(analyzed, total int, file string) {
			fmt.Printf("[%d/%d] %s\n", analyzed, total, file)
		}
	}

	stats, err := workspace.NewScanner(ws, env.logger).Scan(env.cfg.scanOptions(), callback)
	if err != nil {
		return err
	}

	fmt.Printf("Scanned %s\n", env.root)
	fmt.Printf("  files discovered: %d\n", stats.FilesDiscovered)
	fmt.Printf("  files analyzed:   %d\n", stats.FilesAnalyzed)
	fmt.Printf("  files failed:     %d\n", stats.FilesFailed)
	fmt.Printf("  bindings found:   %d\n", stats.BindingsFound)
	fmt.Printf("  duration:         %dms\n", stats.TotalTimeMs)
	for _, fileErr := range stats.Errors {
		fmt.Printf("  failed: %s: %v\n", fileErr.FilePath, fileErr.Error)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	root := fs.String("workspace", "", "workspace root (defaults to current directory)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newAppEnv(*root, *verbose)
	if err != nil {
		return err
	}
	defer env.close()

	ws, err := env.newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	stats, err := workspace.NewScanner(ws, env.logger).Scan(env.cfg.scanOptions(), nil)
	if err != nil {
		return err
	}
	fmt.Printf("Analyzed %d file(s), watching %s for changes...\n", stats.FilesAnalyzed, env.root)

	watcher, err := workspace.NewWatcher(ws, workspace.DefaultWatchOptions(), env.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("shutting down")
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	root := fs.String("workspace", "", "workspace root (defaults to current directory)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	logPath := fs.String("mcp-log", "", "JSONL tool call log path (empty disables logging)")
	noScan := fs.Bool("no-scan", false, "skip the initial workspace scan")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newAppEnv(*root, *verbose)
	if err != nil {
		return err
	}
	defer env.close()

	ws, err := env.newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if !*noScan {
		if _, err := workspace.NewScanner(ws, env.logger).Scan(env.cfg.scanOptions(), nil); err != nil {
			return err
		}
	}

	path := *logPath
	if path == "" && env.cfg != nil {
		path = env.cfg.MCPLogPath
	}
	callLog, err := mcplog.NewLogger(path)
	if err != nil {
		return err
	}
	if callLog != nil {
		defer callLog.Close()
	}

	srv := mcp.NewServer(ws, env.pm, env.qm, env.logger, callLog)
	return srv.ServeStdio()
}
