// Package tcserver is the optional websocket wrapper: a thin network front
// end over the core pipeline. Each message on a connection is raw source
// text; each reply is a JSON-encoded analysis dump.
//
// Each message on a connection gets its own freshly built
// *toycompile.Pipeline: no core state is shared across requests.
package tcserver

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dekarrin/toycompile"
	"github.com/dekarrin/toycompile/internal/tcdot"
	"github.com/dekarrin/toycompile/internal/tclex"
)

// Config is the server's listen configuration, loadable from a TOML file.
type Config struct {
	ListenAddr  string `toml:"listen_addr"`
	GrammarFile string `toml:"grammar_file"`
}

// DefaultConfig is used when no TOML config file is given.
func DefaultConfig() Config {
	return Config{ListenAddr: "localhost:8080"}
}

// CompileOutcome is the JSON shape returned by the /compile endpoint.
type CompileOutcome struct {
	ExitCode int      `json:"exit_code"`
	IR       string   `json:"ir,omitempty"`
	Asm      string   `json:"asm,omitempty"`
	ASTDot   string   `json:"ast_dot,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// Server wires a chi router to a pipeline configuration and serves
// /healthz, /lex, and /compile. A fresh *toycompile.Pipeline is built for
// every message received on a /lex or /compile connection.
type Server struct {
	cfg         Config
	pipelineCfg toycompile.Config
	router      chi.Router
	upgrade     websocket.Upgrader
}

// New builds a Server. pipelineCfg is used to construct one
// *toycompile.Pipeline per websocket message.
func New(cfg Config, pipelineCfg toycompile.Config) *Server {
	if cfg.GrammarFile != "" {
		pipelineCfg.GrammarFile = cfg.GrammarFile
	}
	s := &Server{
		cfg:         cfg,
		pipelineCfg: pipelineCfg,
		router:      chi.NewRouter(),
		upgrade:     websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}
	s.routes()
	return s
}

// LoadConfig reads a TOML config file for the server's listen address and
// grammar resource.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/lex", s.handleLex)
	s.router.Get("/compile", s.handleCompile)
}

// ListenAndServe starts the HTTP server on s.cfg.ListenAddr.
func (s *Server) ListenAndServe() error {
	log.Printf("tcserver: listening on %s", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s.router)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleLex is a dedicated lexer-only websocket endpoint, distinct from the
// full-pipeline /compile: it returns just the token dump for each source
// message, nothing further down the pipeline.
func (s *Server) handleLex(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	reqID := uuid.New()
	log.Printf("tcserver: /lex connection %s from %s", reqID, r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		pipe, err := toycompile.New(s.pipelineCfg)
		if err != nil {
			s.writeJSONErr(conn, err)
			continue
		}

		tokens, lexErrs := pipe.Lex(strings.NewReader(string(data)))

		resp := struct {
			Tokens []tclex.Token    `json:"tokens"`
			Errors []tclex.LexError `json:"errors"`
		}{Tokens: tokens, Errors: lexErrs}

		if b, err := json.Marshal(resp); err == nil {
			conn.WriteMessage(websocket.TextMessage, b)
		}
	}
}

// handleCompile runs the full pipeline for each message received on the
// connection; each message is an independent translation unit.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	reqID := uuid.New()
	start := time.Now()
	log.Printf("tcserver: /compile connection %s from %s", reqID, r.RemoteAddr)
	defer func() {
		log.Printf("tcserver: /compile connection %s closed after %s", reqID, time.Since(start))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		pipe, err := toycompile.New(s.pipelineCfg)
		if err != nil {
			s.writeJSONErr(conn, err)
			continue
		}

		result := pipe.CompileText(string(data))
		outcome := CompileOutcome{ExitCode: result.ExitCode}
		switch {
		case result.ExitCode == toycompile.ExitLexErrors:
			for _, e := range result.LexErrors {
				outcome.Errors = append(outcome.Errors, e.Error())
			}
		case result.ExitCode == toycompile.ExitParseErrors:
			for _, e := range result.ParseErrs {
				outcome.Errors = append(outcome.Errors, e.Error())
			}
		case result.ExitCode == toycompile.ExitIRErrors:
			for _, d := range result.IRDiags {
				outcome.Errors = append(outcome.Errors, d.String())
			}
		default:
			outcome.IR = result.IR
			outcome.Asm = result.Asm
			if result.AST != nil {
				outcome.ASTDot = tcdot.Dump(result.AST)
			}
		}

		if b, err := json.Marshal(outcome); err == nil {
			conn.WriteMessage(websocket.TextMessage, b)
		}
	}
}

func (s *Server) writeJSONErr(conn *websocket.Conn, err error) {
	b, _ := json.Marshal(CompileOutcome{ExitCode: -1, Errors: []string{err.Error()}})
	conn.WriteMessage(websocket.TextMessage, b)
}
