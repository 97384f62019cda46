/*
Toycompile-server starts a toycompile websocket server and begins listening
for connections.

Usage:

	toycompile-server [flags]
	toycompile-server [flags] -l [[ADDRESS]:PORT]

Once started, the server listens for websocket upgrade requests on /lex and
/compile and responds with JSON-encoded compilation results; /healthz is a
plain HTTP liveness route that answers "ok". By default it listens on
localhost:8080; this can be changed with the --listen/-l flag, the
TOYCOMPILE_LISTEN_ADDRESS environment variable, or a config file.

The flags are:

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, defaults to the value of environment variable
		TOYCOMPILE_LISTEN_ADDRESS, then to the config file's listen_addr,
		and if none of those is given, to localhost:8080.

	-c, --config CONFIG_FILE
		Load server config (listen address, grammar file) from the given TOML
		file. Flags given on the command line take priority over values in
		the config file.

	--grammar GRAMMAR_FILE
		Use the given extended-Yacc grammar file instead of the embedded C
		subset grammar for every connection's pipeline.

	--cache-table TABLE_FILE
		Reuse (and, unless --no-store-table is given, refresh) a cached
		parser table at TABLE_FILE instead of regenerating it per pipeline.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dekarrin/toycompile"
	"github.com/dekarrin/toycompile/internal/tcserver"
)

const EnvListen = "TOYCOMPILE_LISTEN_ADDRESS"

var (
	flagListen       = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagConfig       = pflag.StringP("config", "c", "", "Load server config from the given TOML file.")
	flagGrammar      = pflag.String("grammar", "", "Use the given grammar file instead of the embedded default.")
	flagCacheTable   = pflag.String("cache-table", "", "Reuse/refresh a cached parser table at this path.")
	flagNoStoreTable = pflag.Bool("no-store-table", false, "Do not persist a freshly generated parser table.")
	flagHelp         = pflag.BoolP("help", "h", false, "Show this help and exit.")
)

func main() {
	pflag.Parse()

	if *flagHelp {
		fmt.Println(strings.TrimSpace(`
Usage: toycompile-server [flags]

  -l, --listen ADDRESS    listen address (default localhost:8080)
  -c, --config FILE       TOML config file
      --grammar FILE      grammar file for each connection's pipeline
      --cache-table FILE  cached parser table path
      --no-store-table    don't persist a freshly generated table
`))
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintln(os.Stderr, "Too many arguments\nDo -h for help.")
		os.Exit(1)
	}

	var cfg tcserver.Config
	if *flagConfig != "" {
		var err error
		cfg, err = tcserver.LoadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %s\n", err)
			os.Exit(1)
		}
	} else {
		cfg = tcserver.DefaultConfig()
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if *flagGrammar != "" {
		cfg.GrammarFile = *flagGrammar
	}

	pipelineCfg := toycompile.Config{
		GrammarFile:    cfg.GrammarFile,
		CacheTableFile: *flagCacheTable,
		NoStoreTable:   *flagNoStoreTable,
	}

	srv := tcserver.New(cfg, pipelineCfg)
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %s\n", err)
		os.Exit(1)
	}
}
