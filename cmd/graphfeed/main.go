package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/graphfeed/graphfeed/internal/eventbus"
	"github.com/graphfeed/graphfeed/internal/logging"
	"github.com/graphfeed/graphfeed/internal/otel"
	"github.com/graphfeed/graphfeed/internal/resolve"
	"github.com/graphfeed/graphfeed/internal/server"
	"github.com/graphfeed/graphfeed/internal/store"
	"github.com/graphfeed/graphfeed/internal/store/memstore"
	"github.com/graphfeed/graphfeed/internal/store/pgstore"
)

const rootUsage = `graphfeed - GraphQL API over users, posts, profiles and subscriptions

USAGE:
  graphfeed <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server
  schema           Print the served GraphQL schema
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>          HTTP listen address (default: :8080)
  -server.pretty               Pretty-print JSON responses
  -server.timeout <duration>   Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>     Request body size limit (default: 1048576)
  -server.cors-origin <origin> Allowed CORS origin. Repeatable; use * for any
  -store.dsn <url>             PostgreSQL connection string. When empty, an
                               in-memory store with seeded member types is used
  -otel.endpoint <addr>        OTLP collector endpoint
  -otel.service <name>         OpenTelemetry service name (default: graphfeed)
  -log.level <level>           Log level: debug, info, warn, error (default: info)
`

const schemaUsage = `schema FLAGS:
  -out <file>   Write the schema to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphfeed", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "schema":
		return cmdSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "schema":
		fmt.Print(schemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdServe(args []string) error {
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	dsn := ""
	otelEndpoint := ""
	otelService := "graphfeed"
	logLevel := "info"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Request body size limit")
	fs.Var(&corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.StringVar(&dsn, "store.dsn", dsn, "PostgreSQL connection string")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	eventbus.Use(eventbus.New())
	logging.Setup(os.Stderr, level)
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var st store.Store
	if dsn == "" {
		st = memstore.New()
	} else {
		pg, err := pgstore.Connect(context.Background(), dsn)
		if err != nil {
			return fmt.Errorf("store connect: %w", err)
		}
		defer pg.Close()
		if err := pg.Bootstrap(context.Background()); err != nil {
			return fmt.Errorf("store bootstrap: %w", err)
		}
		st = pg
	}

	sopts := []server.Option{
		server.WithMaxBodyBytes(maxBody),
	}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h := server.New(resolve.NewEngine(st), sopts...)

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func cmdSchema(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write the schema to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, schemaUsage)
		return err
	}
	if outFile == "" {
		fmt.Print(resolve.SDL)
		return nil
	}
	return os.WriteFile(outFile, []byte(resolve.SDL), 0644)
}
