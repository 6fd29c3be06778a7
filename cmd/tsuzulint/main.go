// Command tsuzulint is a thin CLI wrapper over the linting engine: it
// wires configuration loading, the parallel scheduler, the fix
// coordinator, and the directory watcher together behind lint/fix/watch
// subcommands, so the engine can be exercised end to end. It is not
// itself the deliverable — see internal/lintfile, internal/scheduler and
// internal/fixer for the actual engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/urfave/cli/v2"

	"github.com/tsuzulint/tsuzulint-go/internal/cache"
	"github.com/tsuzulint/tsuzulint-go/internal/config"
	"github.com/tsuzulint/tsuzulint-go/internal/executor"
	"github.com/tsuzulint/tsuzulint-go/internal/fixer"
	"github.com/tsuzulint/tsuzulint-go/internal/lerrors"
	"github.com/tsuzulint/tsuzulint-go/internal/lintfile"
	"github.com/tsuzulint/tsuzulint-go/internal/logging"
	"github.com/tsuzulint/tsuzulint-go/internal/markdown"
	"github.com/tsuzulint/tsuzulint-go/internal/output"
	"github.com/tsuzulint/tsuzulint-go/internal/plaintext"
	"github.com/tsuzulint/tsuzulint-go/internal/pluginhost"
	"github.com/tsuzulint/tsuzulint-go/internal/scheduler"
	"github.com/tsuzulint/tsuzulint-go/internal/version"
	"github.com/tsuzulint/tsuzulint-go/internal/watch"
	"github.com/tsuzulint/tsuzulint-go/pkg/pathutil"
)

var log = logging.New("cli")

func main() {
	app := &cli.App{
		Name:    "tsuzulint",
		Usage:   "WASM-sandboxed linter for Markdown and plain text",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (JSON or JSONC)",
				Value:   ".tsuzulintrc.json",
			},
			&cli.StringFlag{
				Name:  "project-root",
				Usage: "project root used to resolve .tsuzulint.kdl, .gitignore and build-artifact excludes",
				Value: ".",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "disable the incremental cache for this run",
			},
			&cli.BoolFlag{
				Name:  "interpreter",
				Usage: "run plugin WASM modules in wazero's interpreter instead of its compiler",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output results as JSON",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "lint",
				Usage:     "lint the given files",
				ArgsUsage: "<file> [file...]",
				Action:    lintCommand,
			},
			{
				Name:      "fix",
				Usage:     "lint and apply fixes to the given files, in place",
				ArgsUsage: "<file> [file...]",
				Action:    fixCommand,
			},
			{
				Name:      "watch",
				Usage:     "watch a directory and re-lint files as they change",
				ArgsUsage: "<root>",
				Action:    watchCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tsuzulint: %v\n", err)
		os.Exit(1)
	}
}

// session bundles everything a command needs once configuration and the
// plugin host factory are built.
type session struct {
	cfg       *config.Config
	cache     *cache.Manager
	factory   scheduler.LinterFactory
	formatter *output.Formatter
}

func newSession(ctx context.Context, c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if c.Bool("no-cache") {
		cfg.Cache = false
	}

	mode := executor.ModeCompiler
	if c.Bool("interpreter") {
		mode = executor.ModeInterpreter
	}

	cacheManager := cache.New(cfg.CacheDir)
	if cfg.Cache {
		if err := cacheManager.Load(); err != nil {
			log.Warnf("cache load failed, starting empty: %v", err)
		}
	} else {
		cacheManager.Disable()
	}

	factory, err := newLinterFactory(ctx, cfg, c.String("config"), mode, cacheManager)
	if err != nil {
		return nil, err
	}

	format := "text"
	if c.Bool("json") {
		format = "json"
	}

	return &session{cfg: cfg, cache: cacheManager, factory: factory, formatter: output.New(format)}, nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	root := c.String("project-root")

	cfg, err := config.Load(configPath)
	if err != nil {
		if os.IsNotExist(unwrapPathError(err)) {
			cfg = config.New()
		} else {
			return nil, err
		}
	}

	if overlaid, err := config.LoadKDLOverlay(root, cfg); err != nil {
		log.Warnf("skipping .tsuzulint.kdl overlay: %v", err)
	} else {
		cfg = overlaid
	}

	if err := cfg.ApplyGitignore(root); err != nil {
		log.Warnf("skipping .gitignore excludes: %v", err)
	}
	cfg.ApplyBuildArtifactExclusions(root)

	return cfg, nil
}

func unwrapPathError(err error) error {
	if lerr, ok := err.(*lerrors.LintError); ok {
		return lerr.Unwrap()
	}
	return err
}

// newLinterFactory returns a scheduler.LinterFactory that gives each
// worker its own Host and its own instantiated copy of every configured
// plugin module — no rule-engine state crosses a goroutine boundary.
func newLinterFactory(ctx context.Context, cfg *config.Config, configPath string, mode executor.Mode, cacheManager *cache.Manager) (scheduler.LinterFactory, error) {
	engine, err := executor.NewEngine(ctx, executor.Config{Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("starting wasm engine: %w", err)
	}

	configDir := filepath.Dir(configPath)
	pluginBytes := make(map[string][]byte, len(cfg.Plugins))
	for _, src := range cfg.Plugins {
		if !src.Resolved() {
			return nil, fmt.Errorf("plugin %q has no local path; remote plugin sources are out of scope", src.DisplayName())
		}
		path := src.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading plugin %q: %w", src.DisplayName(), err)
		}
		pluginBytes[src.DisplayName()] = data
	}

	var instanceCounter int64
	configHash := cfg.Hash()
	enabledRules := cfg.EnabledRules()

	return func() (*lintfile.Linter, error) {
		host := pluginhost.New()
		ruleVersions := make(map[string]string, len(cfg.Plugins))

		for _, src := range cfg.Plugins {
			name := src.DisplayName()
			data, ok := pluginBytes[name]
			if !ok {
				continue
			}
			instance := fmt.Sprintf("%s-%d", name, atomic.AddInt64(&instanceCounter, 1))

			// A module's declared permissions aren't known until its own
			// get_manifest export answers, so it is first instantiated
			// with no access at all, probed, and — only if it asked for
			// filesystem access — re-instantiated with that access wired
			// in via wazero's module config.
			module, err := engine.Load(ctx, data, instance, executor.LoadOptions{})
			if err != nil {
				return nil, err
			}
			manifest, err := pluginhost.ProbeManifest(ctx, module, name)
			if err != nil {
				module.Close(ctx)
				return nil, err
			}
			if len(manifest.Permissions.Filesystem) > 0 {
				if err := module.Close(ctx); err != nil {
					return nil, err
				}
				module, err = engine.Load(ctx, data, instance+"-fs", executor.LoadOptions{FSRoot: manifest.Permissions.Filesystem[0]})
				if err != nil {
					return nil, err
				}
			}

			var options json.RawMessage
			if rc, ok := enabledRules[name]; ok {
				options = rc.Options()
			}
			if err := host.LoadRule(ctx, name, module, options); err != nil {
				return nil, err
			}
			if loaded, ok := host.Manifest(name); ok {
				ruleVersions[name] = loaded.Version
			}
		}

		linter := lintfile.New(cacheManager, host, configHash, ruleVersions)
		linter.RegisterParser(markdown.Parse, "md", "markdown")
		linter.RegisterParser(plaintext.Parse, "txt", "text")
		return linter, nil
	}, nil
}

func lintCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: tsuzulint lint <file> [file...]", 1)
	}
	ctx := context.Background()

	sess, err := newSession(ctx, c)
	if err != nil {
		return err
	}

	sched := scheduler.New(sess.factory)
	results, err := sched.Run(ctx, c.Args().Slice())
	if err != nil {
		return err
	}

	if sess.cfg.Cache {
		if err := sess.cache.Save(); err != nil {
			log.Warnf("cache save failed: %v", err)
		}
	}

	results = pathutil.ToRelativeResults(results, c.String("project-root"))
	errCount, err := sess.formatter.Write(os.Stdout, results)
	if err != nil {
		return err
	}
	files, issues, _ := output.Summary(results)
	fmt.Fprintf(os.Stderr, "%d file(s), %d issue(s)\n", files, issues)
	if errCount > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func fixCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: tsuzulint fix <file> [file...]", 1)
	}
	ctx := context.Background()

	sess, err := newSession(ctx, c)
	if err != nil {
		return err
	}
	linter, err := sess.factory()
	if err != nil {
		return err
	}
	coordinator := fixer.NewCoordinator()

	totalFixes := 0
	for _, path := range c.Args().Slice() {
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}

		result, err := coordinator.Converge(ctx, path, string(content), func(ctx context.Context, path, src string) (fixer.Result, error) {
			lr, err := linter.LintFile(ctx, path, []byte(src))
			if err != nil {
				return fixer.Result{}, err
			}
			return fixer.ApplyFixes(src, lr.Diagnostics), nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}

		if result.FixesApplied == 0 {
			continue
		}
		if err := os.WriteFile(path, []byte(result.FinalContent), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: writing fixed content: %v\n", path, err)
			continue
		}
		totalFixes += result.FixesApplied
		fmt.Fprintf(os.Stdout, "%s: applied %d fix(es) over %d iteration(s)\n", path, result.FixesApplied, result.Iterations)
	}

	fmt.Fprintf(os.Stderr, "%d total fix(es) applied\n", totalFixes)
	return nil
}

func watchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: tsuzulint watch <root>", 1)
	}
	root := c.Args().First()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := newSession(ctx, c)
	if err != nil {
		return err
	}

	w, err := watch.New(sess.cfg)
	if err != nil {
		return err
	}
	w.OnBatch = func(paths []string) {
		sched := scheduler.New(sess.factory)
		results, err := sched.Run(ctx, paths)
		if err != nil {
			log.Warnf("watch run failed: %v", err)
			return
		}
		results = pathutil.ToRelativeResults(results, root)
		if _, err := sess.formatter.Write(os.Stdout, results); err != nil {
			log.Warnf("writing watch results: %v", err)
		}
	}

	if err := w.Start(ctx, root); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	return nil
}
