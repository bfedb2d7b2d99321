// Command nextmode is a command-line shell for the Next Mode goal tracker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/nextmode/internal/config"
	"github.com/and161185/nextmode/internal/crypto"
	"github.com/and161185/nextmode/internal/errs"
	"github.com/and161185/nextmode/internal/migrate"
	"github.com/and161185/nextmode/internal/model"
	"github.com/and161185/nextmode/internal/repository"
	"github.com/and161185/nextmode/internal/repository/postgres"
	"github.com/and161185/nextmode/internal/repository/sqlite"
	"github.com/and161185/nextmode/internal/service"
	"github.com/and161185/nextmode/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitAuth       = 3
	exitNotFound   = 4
)

const usageText = `nextmode - goal tracker
Usage:
  nextmode [-config file] [-store sqlite|postgres] [-dsn DSN] [-ns NS] [-hash] [-dev] -u NAME -p CODE <cmd> [args]

Commands:
  version
  login                                                    (creates the user on first use)
  add      -title T [-desc D] -category C -effort E [-deadline YYYY-MM-DD]
  edit     -id ID [-title T] [-desc D] [-category C] [-effort E] [-deadline YYYY-MM-DD]
  complete -id ID
  end      -id ID -reason R
  list     [-active]
  history
  stats
  welcome                                                  (marks the welcome as seen)
`

// usage prints the command summary with the accepted enum labels.
func usage(w io.Writer) {
	fmt.Fprint(w, usageText)
	fmt.Fprintf(w, "\nCategories: %s\n", joinLabels(model.Categories, false))
	fmt.Fprintf(w, "Efforts:    %s\n", joinLabels(model.Efforts, false))
	fmt.Fprintf(w, "Reasons:    %s\n", joinLabels(model.DeletionReasons, true))
}

func joinLabels[T ~string](vals []T, quote bool) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		if quote {
			parts = append(parts, strconv.Quote(string(v)))
			continue
		}
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ", ")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	gfs := flag.NewFlagSet("nextmode", flag.ContinueOnError)
	gfs.SetOutput(stderr)
	gfs.Usage = func() { usage(stderr) }
	cfgPath := gfs.String("config", "", "YAML config file")
	store := gfs.String("store", "", "store backend: sqlite or postgres")
	dsn := gfs.String("dsn", "", "sqlite file path or postgres DSN")
	ns := gfs.String("ns", "", "storage namespace")
	hash := gfs.Bool("hash", false, "seal new passcodes with Argon2id")
	dev := gfs.Bool("dev", false, "development logging")
	user := gfs.String("u", "", "username")
	pass := gfs.String("p", "", "passcode (1-4 digits)")
	if err := gfs.Parse(args); err != nil {
		return exitValidation
	}
	if gfs.NArg() < 1 {
		gfs.Usage()
		return exitValidation
	}
	cmd, cmdArgs := gfs.Arg(0), gfs.Args()[1:]

	if cmd == "version" {
		fmt.Fprintf(stdout, "nextmode %s (%s)\n", version, buildDate)
		return exitOK
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fail(stderr, err)
	}
	gfs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			cfg.Store = *store
		case "dsn":
			cfg.DSN = *dsn
		case "ns":
			cfg.Namespace = *ns
		case "hash":
			cfg.HashPasscodes = *hash
		case "dev":
			cfg.Dev = *dev
		}
	})
	if err := cfg.Validate(); err != nil {
		return fail(stderr, err)
	}

	log, err := newLogger(cfg.Dev)
	if err != nil {
		return fail(stderr, err)
	}
	defer func() { _ = log.Sync() }()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("open store", zap.String("store", cfg.Store), zap.Error(err))
		return fail(stderr, err)
	}
	defer closeStore()

	var creds crypto.Credentials = crypto.Plain{}
	if cfg.HashPasscodes {
		creds = crypto.Sealed{}
	}
	sess, err := session.Open(ctx, session.Deps{
		Store:    st,
		Identity: service.NewIdentityService(st, creds, log),
		Engine:   service.NewEngine(),
		Log:      log,
	}, *user, *pass)
	if err != nil {
		return fail(stderr, err)
	}
	defer sess.Close()

	out, err := dispatch(ctx, sess, cmd, cmdArgs, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	printJSON(stdout, out)
	return exitOK
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore opens the configured backend, applying migrations first.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	switch cfg.Store {
	case migrate.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.DataSource(), cfg.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case migrate.DriverPostgres:
		if err := migrate.Up(ctx, migrate.DriverPostgres, cfg.DataSource()); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DataSource())
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(db, cfg.Namespace), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrInvalidTransition):
		return exitValidation
	case errors.Is(err, errs.ErrUnauthorized):
		return exitAuth
	case errors.Is(err, errs.ErrNotFound):
		return exitNotFound
	}
	return exitFailure
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, "error:", err)
	return exitCode(err)
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// dispatch runs one session command and returns the value to print.
func dispatch(ctx context.Context, s *session.Session, cmd string, args []string, stderr io.Writer) (any, error) {
	switch cmd {
	case "login":
		return loginCmd(s)
	case "add":
		return addCmd(ctx, s, args, stderr)
	case "edit":
		return editCmd(ctx, s, args, stderr)
	case "complete":
		return completeCmd(ctx, s, args, stderr)
	case "end":
		return endCmd(ctx, s, args, stderr)
	case "list":
		return listCmd(s, args, stderr)
	case "history":
		goals, err := s.History()
		if err != nil {
			return nil, err
		}
		return toGoalViews(goals), nil
	case "stats":
		return statsCmd(s)
	case "welcome":
		u, err := s.MarkWelcomeSeen(ctx)
		if err != nil {
			return nil, err
		}
		return toUserView(u), nil
	}
	return nil, fmt.Errorf("%w: unknown command %q", errs.ErrValidation, cmd)
}
