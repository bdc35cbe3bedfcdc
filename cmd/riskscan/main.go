package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"riskscan/internal/analysis"
	"riskscan/internal/chain"
	"riskscan/internal/config"
	"riskscan/internal/logger"
	"riskscan/internal/metrics"
	"riskscan/internal/report"
	"riskscan/internal/reputation"
	"riskscan/internal/server"
	"riskscan/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

	switch cmd {
	case "analyze":
		runAnalyze()
	case "batch":
		runBatch()
	case "serve":
		runServe()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: riskscan <analyze|batch|serve> [flags]")
	fmt.Fprintln(os.Stderr, "  analyze -addr 0x...      analyze one contract address")
	fmt.Fprintln(os.Stderr, "  analyze -code 0x...      analyze raw bytecode offline")
	fmt.Fprintln(os.Stderr, "  batch   -file addrs.txt  analyze a list of addresses")
	fmt.Fprintln(os.Stderr, "  serve                    run the HTTP API")
}

func runAnalyze() {
	var (
		addr       = flag.String("addr", "", "contract address to analyze")
		code       = flag.String("code", "", "raw bytecode hex to analyze offline")
		configPath = flag.String("config", "", "path to settings.yaml")
		outDir     = flag.String("out", "", "write a markdown report to this directory")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()
	logger.SetVerbose(*verbose)

	var res *analysis.AnalysisResult
	switch {
	case *code != "":
		raw, err := analysis.ParseBytecode(*code)
		if err != nil {
			fatal("invalid -code: %v", err)
		}
		res = analysis.AnalyzeBytes(raw)
	case *addr != "":
		cfg := mustLoadConfig(*configPath)
		engine, cleanup := mustBuildEngine(cfg)
		defer cleanup()
		var err error
		res, err = engine.Analyze(context.Background(), *addr)
		if err != nil {
			fatal("analysis failed: %v", err)
		}
	default:
		fatal("one of -addr or -code is required")
	}

	out, err := report.RenderJSON(res)
	if err != nil {
		fatal("failed to render result: %v", err)
	}
	fmt.Println(out)

	if *outDir != "" {
		path, err := report.NewFileStorage(*outDir).Save(res.Address, report.RenderMarkdown(res))
		if err != nil {
			fatal("failed to save report: %v", err)
		}
		logger.Info("report saved to %s", path)
	}
}

func runBatch() {
	var (
		file        = flag.String("file", "", "file with one contract address per line")
		configPath  = flag.String("config", "", "path to settings.yaml")
		outDir      = flag.String("out", "", "write markdown reports to this directory")
		concurrency = flag.Int("c", 4, "number of concurrent analyses")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()
	logger.SetVerbose(*verbose)

	if *file == "" {
		fatal("-file is required")
	}
	addrs, err := readLines(*file)
	if err != nil {
		fatal("failed to read %s: %v", *file, err)
	}

	cfg := mustLoadConfig(*configPath)
	engine, cleanup := mustBuildEngine(cfg)
	defer cleanup()

	var db *store.Store
	if cfg.Database.Path != "" {
		db, err = store.Open(cfg.Database.Path)
		if err != nil {
			fatal("failed to open database: %v", err)
		}
	}

	var storage *report.FileStorage
	if *outDir != "" {
		storage = report.NewFileStorage(*outDir)
	}

	logger.Info("analyzing %d addresses with concurrency %d", len(addrs), *concurrency)

	sem := make(chan struct{}, *concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, addr := range addrs {
		wg.Add(1)
		sem <- struct{}{}
		go func(addr string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := engine.Analyze(context.Background(), addr)
			if err != nil {
				logger.Error("%s: %v", addr, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			logger.Info("%s: score %d (%s), %d findings", res.Address, res.Score, res.Level, len(res.Findings))
			if db != nil {
				if err := db.Save(res); err != nil {
					logger.Warn("%s: failed to persist: %v", addr, err)
				}
			}
			if storage != nil {
				if _, err := storage.Save(res.Address, report.RenderMarkdown(res)); err != nil {
					logger.Warn("%s: failed to save report: %v", addr, err)
				}
			}
		}(addr)
	}
	wg.Wait()

	logger.Info("done: %d analyzed, %d failed", len(addrs)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func runServe() {
	var (
		configPath = flag.String("config", "", "path to settings.yaml")
		listen     = flag.String("listen", "", "listen address (overrides config)")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()
	logger.SetVerbose(*verbose)

	cfg := mustLoadConfig(*configPath)
	if err := logger.Init(cfg.LogDir); err != nil {
		fatal("failed to init logging: %v", err)
	}
	defer logger.Close()

	engine, cleanup := mustBuildEngine(cfg)
	defer cleanup()

	m := metrics.NewServerMetrics()
	metrics.Register(m)

	addr := cfg.Server.Listen
	if *listen != "" {
		addr = *listen
	}
	if err := server.New(engine, &m).ListenAndServe(addr); err != nil {
		fatal("server failed: %v", err)
	}
}

func mustLoadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	return cfg
}

func mustBuildEngine(cfg *config.Config) (*analysis.Engine, func()) {
	client, err := chain.Dial(cfg.Chain.RPCURLs, cfg.RPCTimeout())
	if err != nil {
		fatal("failed to connect to chain: %v", err)
	}

	opts := analysis.Options{
		Bytecode:    client,
		Storage:     client,
		CacheTTL:    cfg.CacheTTL(),
		CacheSize:   cfg.Cache.MaxEntries,
		CallTimeout: cfg.RPCTimeout(),
	}
	if cfg.Reputation.APIKey != "" {
		opts.Reputation = reputation.NewClient(cfg.Reputation.APIKey, cfg.Reputation.BaseURL)
	}
	return analysis.New(opts), client.Close
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

func fatal(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	os.Exit(1)
}
