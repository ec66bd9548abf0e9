// Command identityctl records identities into an identity table.
//
// Identities are taken from the arguments, or one per line from stdin when
// no arguments are given:
//
//	identityctl -mob batch-7 a1b2c3 d4e5f6
//	generate-ids | identityctl
//
// The backend and table mapping come from the environment (optionally
// seeded from a .env file in the working directory):
//
//	IDENTITYCTL_BACKEND          sqlite (default) or dynamodb
//	IDENTITYCTL_SQLITE_PATH      database file for the sqlite backend
//	IDENTITYCTL_AWS_PROFILE      shared config profile for the dynamodb backend
//	IDENTITYCTL_TABLE            table name
//	IDENTITYCTL_IDENTITY_COLUMN  identity column (DynamoDB partition key)
//	IDENTITYCTL_MOB_COLUMN       mob column, empty when mobs are unsupported
//
// Exit status is 0 when every identity was stored, 3 when some were
// duplicates, 2 on usage or configuration errors and 1 on storage failure.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jacentio/identitystore/dynamo"
	"github.com/jacentio/identitystore/internal/config"
	"github.com/jacentio/identitystore/sqlstore"
	"github.com/jacentio/identitystore/store"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitDuplicates = 3
)

type cliConfig struct {
	Backend        string `env:"IDENTITYCTL_BACKEND" envDefault:"sqlite"`
	SQLitePath     string `env:"IDENTITYCTL_SQLITE_PATH" envDefault:"identities.db"`
	AWSProfile     string `env:"IDENTITYCTL_AWS_PROFILE"`
	Table          string `env:"IDENTITYCTL_TABLE" envDefault:"identities"`
	IdentityColumn string `env:"IDENTITYCTL_IDENTITY_COLUMN" envDefault:"identity"`
	MobColumn      string `env:"IDENTITYCTL_MOB_COLUMN"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	fs := flag.NewFlagSet("identityctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mob := fs.String("mob", "", "mob label to attach to every identity")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	var hasMob bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "mob" {
			hasMob = true
		}
	})

	var cfg cliConfig
	if err := config.Load(&cfg, ".env"); err != nil {
		logger.Error("failed to load configuration", "error", err)
		return exitUsage
	}

	conn, closeConn, err := openConn(ctx, cfg)
	if err != nil {
		logger.Error("failed to open connection", "backend", cfg.Backend, "error", err)
		return exitUsage
	}
	defer closeConn()

	s := store.New(conn, store.Config{
		Table:          cfg.Table,
		IdentityColumn: cfg.IdentityColumn,
		MobColumn:      cfg.MobColumn,
	})

	identities := fs.Args()
	if len(identities) == 0 {
		identities, err = readLines(stdin)
		if err != nil {
			logger.Error("failed to read identities", "error", err)
			return exitUsage
		}
	}
	if len(identities) == 0 {
		fmt.Fprintln(stderr, "usage: identityctl [-mob label] identity...")
		return exitUsage
	}

	var stored, duplicates int
	for _, identity := range identities {
		var err error
		if hasMob {
			err = s.StoreMobIdentity(ctx, identity, *mob)
		} else {
			err = s.StoreIdentity(ctx, identity)
		}

		var storeErr *store.Error
		switch {
		case err == nil:
			stored++
			fmt.Fprintf(stdout, "stored %s\n", identity)
		case errors.As(err, &storeErr) && storeErr.Kind == store.KindNonUniqueIdentity:
			duplicates++
			fmt.Fprintf(stdout, "duplicate %s\n", identity)
		case errors.As(err, &storeErr) && storeErr.Kind == store.KindMobsUnsupported:
			logger.Error("mobs are not configured", "table", cfg.Table, "mob", *mob)
			return exitUsage
		default:
			logger.Error("failed to store identity",
				"identity", identity,
				"error", err,
			)
			return exitFailure
		}
	}

	logger.Info("done",
		"stored", stored,
		"duplicates", duplicates,
	)

	if duplicates > 0 {
		return exitDuplicates
	}
	return exitOK
}

// openConn opens the configured backend. The returned func releases it.
func openConn(ctx context.Context, cfg cliConfig) (store.Conn, func(), error) {
	switch cfg.Backend {
	case "sqlite":
		conn, err := sqlstore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return conn, func() { conn.Close() }, nil
	case "dynamodb":
		client, err := dynamo.LoadClient(ctx, cfg.AWSProfile)
		if err != nil {
			return nil, nil, err
		}
		conn := dynamo.New(client, map[string]string{cfg.Table: cfg.IdentityColumn})
		return conn, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// readLines returns the non-blank, trimmed lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
