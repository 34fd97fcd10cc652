package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/sqlitestore"
	"github.com/dmitrymomot/sqlitestore/pkg/config"
	"github.com/dmitrymomot/sqlitestore/pkg/logger"
	"github.com/dmitrymomot/sqlitestore/pkg/options"
)

type appConfig struct {
	Env   string `env:"APP_ENV" envDefault:"development"`
	Store sqlitestore.Config
}

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "sessionctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: sessionctl [flags] count|list|get <sid>|destroy <sid>|clear|sweep")
		fs.PrintDefaults()
	}

	envFile := fs.String("env-file", "", "additional .env file to load")
	optsFile := fs.String("config", "", "YAML option file")
	driver := fs.String("driver", "", "storage driver: sqlite or postgres")
	db := fs.String("db", "", "database file name")
	dir := fs.String("dir", "", "database directory")
	table := fs.String("table", "", "session table name")
	mode := fs.String("mode", "", "SQLite open mode: ro, rw, rwc or memory")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	if *envFile != "" {
		if err := config.LoadEnv(*envFile); err != nil {
			return err
		}
	}
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "sessionctl"),
		logger.WithOutput(stderr),
	)
	logger.SetAsDefault(log)

	var fileOpts map[string]any
	if *optsFile != "" {
		var err error
		if fileOpts, err = config.LoadOptionsFile(*optsFile); err != nil {
			return err
		}
	}

	flagOpts := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			flagOpts["driver"] = *driver
		case "db":
			flagOpts["db"] = *db
		case "dir":
			flagOpts["dir"] = *dir
		case "table":
			flagOpts["table"] = *table
		case "mode":
			flagOpts["mode"] = *mode
		}
	})
	// One-shot commands never need the periodic sweep.
	flagOpts["cleanupInterval"] = 0

	storeCfg, err := cfg.Store.WithOptions(options.Build(fileOpts, flagOpts))
	if err != nil {
		return err
	}

	store, err := sqlitestore.New(ctx, storeCfg, sqlitestore.WithLogger(log))
	if err != nil {
		return err
	}
	defer store.Close()

	return execute(ctx, store, fs.Args(), stdout, log)
}

func execute(ctx context.Context, store *sqlitestore.Store, args []string, out io.Writer, log *slog.Logger) error {
	cmd, rest := args[0], args[1:]

	sidArg := func() (string, error) {
		if len(rest) != 1 || rest[0] == "" {
			return "", fmt.Errorf("%s: expected exactly one session id", cmd)
		}
		return rest[0], nil
	}

	enc := json.NewEncoder(out)

	switch cmd {
	case "count":
		n, err := store.Length(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)

	case "list":
		_, err := store.All(ctx, func(err error, sessions []sqlitestore.Session) {
			if err != nil {
				return
			}
			for _, sess := range sessions {
				if encErr := enc.Encode(sess); encErr != nil {
					log.ErrorContext(ctx, "failed to write session", logger.Error(encErr))
				}
			}
		})
		return err

	case "get":
		sid, err := sidArg()
		if err != nil {
			return err
		}
		sess, err := store.Get(ctx, sid)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("session %q not found", sid)
		}
		return enc.Encode(sess)

	case "destroy":
		sid, err := sidArg()
		if err != nil {
			return err
		}
		if _, err := store.Destroy(ctx, sid); err != nil {
			return err
		}
		log.InfoContext(ctx, "session destroyed", logger.SID(sid))

	case "clear":
		if _, err := store.Clear(ctx); err != nil {
			return err
		}
		log.InfoContext(ctx, "all sessions removed")

	case "sweep":
		n, err := store.DB().Sweep(ctx, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
