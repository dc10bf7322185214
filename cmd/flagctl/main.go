package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/suparena/flagstore"
	"github.com/suparena/flagstore/datastore"
	"github.com/suparena/flagstore/datastore/ddb"
	"github.com/suparena/flagstore/datastore/env"
	"github.com/suparena/flagstore/datastore/httpsource"
	"github.com/suparena/flagstore/datastore/sqlstore"
	"github.com/suparena/flagstore/datastore/yamlfile"
	"github.com/suparena/flagstore/registry"
	"github.com/suparena/flagstore/storagemodels"
)

var (
	versionFlag     = flag.Bool("version", false, "Show version information")
	vFlag           = flag.Bool("v", false, "Show version information (short)")
	debugFlag       = flag.Bool("debug", false, "Enable debug logging")
	definitionsFlag = flag.String("definitions", "flags.yaml", "Flag definitions file")
	storeFlag       = flag.String("store", "", "YAML file holding overrides")
	sqliteFlag      = flag.String("sqlite", "", "SQLite database holding overrides")
	dynamoFlag      = flag.Bool("dynamodb", false, "Hold overrides in DynamoDB, configured from AWS_* variables")
	envPrefixFlag   = flag.String("env-prefix", "", "Hydrate from environment variables with this prefix")
	dotenvFlag      = flag.String("dotenv", "", "Comma-separated .env files read together with -env-prefix")
	remoteFlag      = flag.String("remote", "", "Hydrate from the JSON document at this URL")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: flagctl [flags] <command> [args]

Commands:
  list               show every flag, * marks overridden flags
  get NAME           show the effective value of a flag
  set NAME VALUE     override a flag (true, false, null or a string)
  reset NAME         drop the override of a flag
  watch              show flags again whenever the definitions change

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag || *vFlag {
		info := flagstore.GetVersionInfo()
		fmt.Printf("flagctl version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, flag.Args(), os.Stdout); err != nil {
		logger.Error("flagctl failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	defs, err := registry.LoadFile(*definitionsFlag)
	if err != nil {
		return err
	}

	stores, closeStores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	r := flagstore.New(ctx, flagstore.Options{
		Storage:     stores,
		Definitions: defs,
		HydrateFrom: hydrationSources(logger),
		Logger:      logger,
	})
	if err := r.Wait(); err != nil {
		logger.Warn("hydration incomplete", "error", err)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return printFlags(ctx, out, r)

	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("usage: get NAME")
		}
		if err := requireFlag(r, rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(out, r.Get(ctx, rest[0]))
		return nil

	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("usage: set NAME VALUE")
		}
		name, value := rest[0], storagemodels.ParseValue(rest[1])
		if err := requireFlag(r, name); err != nil {
			return err
		}
		def := r.Definitions()[name]
		if def.Type() == storagemodels.FlagTypeSelect {
			s, ok := value.AsString()
			if !ok || !slices.Contains(def.Options, s) {
				return fmt.Errorf("%s must be one of %s", name, strings.Join(def.Options, ", "))
			}
		}
		return r.Set(ctx, name, value)

	case "reset":
		if len(rest) != 1 {
			return fmt.Errorf("usage: reset NAME")
		}
		if err := requireFlag(r, rest[0]); err != nil {
			return err
		}
		return r.Set(ctx, rest[0], r.GetDefault(rest[0]))

	case "watch":
		if err := printFlags(ctx, out, r); err != nil {
			return err
		}
		err := r.WatchDefinitions(ctx, *definitionsFlag, func(err error) {
			if err != nil {
				logger.Warn("hydration incomplete", "error", err)
			}
			fmt.Fprintln(out)
			if err := printFlags(ctx, out, r); err != nil {
				logger.Error("failed to print flags", "error", err)
			}
		})
		if err != nil {
			return err
		}
		<-ctx.Done()
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openStores(ctx context.Context) ([]datastore.Store, func(), error) {
	var stores []datastore.Store
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	if *storeFlag != "" {
		s, err := yamlfile.Open("file", *storeFlag)
		if err != nil {
			return nil, nil, err
		}
		stores = append(stores, s)
	}

	if *sqliteFlag != "" {
		s, err := sqlstore.Open(ctx, "sqlite", *sqliteFlag)
		if err != nil {
			return nil, nil, err
		}
		stores = append(stores, s)
		closers = append(closers, s.Close)
	}

	if *dynamoFlag {
		cfg, err := ddb.ConfigFromEnv()
		if err == nil {
			var s *ddb.DynamodbDataStore
			if s, err = ddb.NewDynamodbDataStore(ctx, "dynamodb", cfg); err == nil {
				stores = append(stores, s)
			}
		}
		if err != nil {
			closeAll()
			return nil, nil, err
		}
	}

	return stores, closeAll, nil
}

func hydrationSources(logger *slog.Logger) []datastore.ReadOnlyStore {
	var sources []datastore.ReadOnlyStore
	if *envPrefixFlag != "" {
		var files []string
		if *dotenvFlag != "" {
			files = strings.Split(*dotenvFlag, ",")
		}
		sources = append(sources, env.New("env", *envPrefixFlag, files...))
	}
	if *remoteFlag != "" {
		sources = append(sources, httpsource.New("remote", *remoteFlag, httpsource.WithLogger(logger)))
	}
	return sources
}

func requireFlag(r *flagstore.Resolver, name string) error {
	if _, ok := r.Definitions()[name]; !ok {
		return fmt.Errorf("flag %q is not defined in %s", name, *definitionsFlag)
	}
	return nil
}

func printFlags(ctx context.Context, out io.Writer, r *flagstore.Resolver) error {
	resolved := r.AllResolved(ctx)
	overridden := r.AllOverridden(ctx)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range r.Definitions().Names() {
		mark := " "
		if _, ok := overridden[name]; ok {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\t%s\n", mark, name, resolved[name])
	}
	return w.Flush()
}
