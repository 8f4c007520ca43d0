package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"path/filepath"

	"pythaw/internal/findings"
	"pythaw/internal/formatters"
	"pythaw/internal/handlers"
	"pythaw/internal/observability"
	"pythaw/internal/pyast"
	"pythaw/internal/pycheck"
	"pythaw/internal/pyconfig"
	"pythaw/internal/pyerrors"
	"pythaw/internal/pyresolve"
	"pythaw/internal/rules"
)

const version = "0.1.0"

var (
	configPath = flag.String("config", "", "Path to pyproject.toml (default: search upward from the target)")
	format     = flag.String("format", "concise", "Output format: concise, json, github, sarif")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("pythaw v%s\n", version)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: pythaw [check <path>...|rules|rule <code>]")
		os.Exit(2)
	}

	var err error
	var code int
	switch args[0] {
	case "check":
		code, err = runCheck(args[1:])
	case "rules":
		code, err = runRules()
	case "rule":
		code, err = runRule(args[1:])
	default:
		// bare paths default to check, mirroring the original tool's CLI.
		code, err = runCheck(args)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	os.Exit(code)
}

func runCheck(targets []string) (int, error) {
	if len(targets) == 0 {
		targets = []string{"."}
	}

	observability.NewLocalTracerProvider()
	ctx, span := observability.Tracer.Start(context.Background(), "pythaw.check")
	defer span.End()

	manifestPath := *configPath
	if manifestPath == "" {
		manifestPath = pyconfig.FindManifest(targets[0])
	}

	var pw *pyconfig.Pythaw
	if manifestPath != "" {
		loaded, err := pyconfig.Load(manifestPath)
		if err != nil {
			return 2, err
		}
		pw = loaded
	} else {
		pw = pyconfig.Default()
	}

	if unknown := rules.UnknownCodes(pw.EnabledRules); len(unknown) > 0 {
		return 2, pyerrors.New(pyerrors.CodeConfigInvalid, fmt.Sprintf("unknown rule codes: %s", strings.Join(unknown, ", ")))
	}

	var custom []rules.Custom
	for _, c := range pw.CustomRules {
		custom = append(custom, rules.Custom{Pattern: c.Pattern, Message: c.Message})
	}
	registry := rules.NewRegistry(pw.EnabledRules, custom)

	projectRoot := "."
	if manifestPath != "" {
		projectRoot = filepath.Dir(manifestPath)
	}

	parser, err := pyast.NewParser()
	if err != nil {
		return 2, err
	}
	cache := pyast.NewCache(parser)
	resolver := pyresolve.New(projectRoot)

	finder, err := handlers.New(cache, pw.HandlerPatterns, pw.Exclude)
	if err != nil {
		return 2, pyerrors.Wrap(pyerrors.CodeConfigInvalid, "compile patterns", err)
	}

	found, diags, err := finder.Find(ctx, targets)
	if err != nil {
		return 2, err
	}
	pycheck.SortHandlers(found)
	observability.HandlersFoundTotal.Add(float64(len(found)))

	checker := pycheck.New(cache, resolver, registry)

	var violations []findings.Violation
	for _, h := range found {
		_, hspan := observability.StartHandlerSpan(ctx, h.Name)
		vs := checker.CheckHandler(h)
		hspan.End()
		violations = append(violations, vs...)
		for _, v := range vs {
			observability.ViolationsTotal.WithLabelValues(v.Code).Inc()
		}
	}
	diags = append(diags, checker.SortedDiagnostics()...)

	result := formatters.Result{
		ProjectRoot: projectRoot,
		Violations:  violations,
		Diagnostics: diags,
	}

	fmtr, err := selectFormatter(registry)
	if err != nil {
		return 2, err
	}
	out, err := fmtr.Format(result)
	if err != nil {
		return 2, err
	}
	fmt.Println(string(out))
	return result.ExitCode(), nil
}

func selectFormatter(registry *rules.Registry) (formatters.Formatter, error) {
	switch *format {
	case "concise":
		return formatters.Concise{}, nil
	case "json":
		return formatters.JSON{}, nil
	case "github":
		return formatters.GitHubActions{}, nil
	case "sarif":
		return formatters.SARIF{ToolVersion: version, Registry: registry}, nil
	default:
		return nil, pyerrors.New(pyerrors.CodeConfigInvalid, fmt.Sprintf("unknown format %q", *format))
	}
}

func runRules() (int, error) {
	for _, r := range rules.NewRegistry(nil, nil).All() {
		fmt.Printf("%s\t%s\n", r.Code, r.Message)
	}
	return 0, nil
}

func runRule(args []string) (int, error) {
	if len(args) != 1 {
		return 2, pyerrors.New(pyerrors.CodeConfigInvalid, "usage: pythaw rule <code>")
	}
	rule, ok := rules.NewRegistry(nil, nil).Get(args[0])
	if !ok {
		return 1, pyerrors.New(pyerrors.CodeNotSupported, fmt.Sprintf("unknown rule %q", args[0]))
	}
	fmt.Printf("%s: %s\n\n", rule.Code, rule.Message)
	fmt.Printf("What:\n%s\n\n", rule.What)
	fmt.Printf("Why:\n%s\n\n", rule.Why)
	fmt.Printf("Example:\n%s\n", rule.Example)
	return 0, nil
}
