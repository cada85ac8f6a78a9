/*
Gudgeonls starts a tiny HTTP server wrapping the context-evaluation surface
for editor tooling integrations.

Usage:

	gudgeonls [flags]

The flags are:

	-v, --version
		Give the current version of gudgeon and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. Defaults to localhost:8080.

Once started, POST a JSON body of {"source": "...", "offset": N} to
/context to learn what state the built-in arithmetic grammar is in at byte
offset N of source, without running any reduction callback.
*/
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"

	"github.com/dekarrin/gudgeon/automaton"
	"github.com/dekarrin/gudgeon/internal/demogrammar"
	"github.com/dekarrin/gudgeon/internal/langfile"
	"github.com/dekarrin/gudgeon/internal/version"
	"github.com/dekarrin/gudgeon/langedit"
	"github.com/dekarrin/gudgeon/lexer"
	"github.com/dekarrin/gudgeon/ruleset"
)

const EnvListen = "GUDGEON_LISTEN_ADDRESS"

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of gudgeon and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
)

type contextRequest struct {
	Source string `json:"source"`
	Offset int    `json:"offset"`
}

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		listenAddr = "localhost:8080"
	}
	if strings.HasPrefix(listenAddr, ":") {
		listenAddr = "localhost" + listenAddr
	}

	ev, lx, err := buildEvaluator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Post("/context", contextHandler(ev, lx))

	log.Printf("gudgeonls listening on %s", listenAddr)
	if err := http.ListenAndServe(listenAddr, r); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}

func contextHandler(ev *langedit.Evaluator, lx *lexer.Lexer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body contextRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		res := lx.Lex(body.Source, false)
		result := ev.Evaluate(res.Tokens, body.Offset)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Printf("encoding response: %v", err)
		}
	}
}

func buildEvaluator() (*langedit.Evaluator, *lexer.Lexer, error) {
	spec, err := langfile.LoadString(demogrammar.Arithmetic)
	if err != nil {
		return nil, nil, err
	}

	methods := map[string]ruleset.ReduceFunc{
		"atom":   noopMethod,
		"paren":  noopMethod,
		"muldiv": noopMethod,
		"addsub": noopMethod,
	}
	if err := langfile.AttachMethods(spec.Rules, spec.RuleNames, methods); err != nil {
		return nil, nil, err
	}

	decl := ruleset.Declaration{RootType: spec.RootType, RootMaxRank: spec.RootMaxRank, Rules: spec.Rules}
	rs, err := ruleset.Elaborate(spec.Tokens, decl)
	if err != nil {
		return nil, nil, fmt.Errorf("elaborating grammar: %w", err)
	}

	table, err := automaton.Construct(rs)
	if err != nil {
		return nil, nil, fmt.Errorf("constructing table: %w", err)
	}

	forest, err := lexer.BuildForest(spec.Tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("building lexer forest: %w", err)
	}
	lx := lexer.New(spec.Tokens, forest, lexer.Options{})

	return langedit.New(spec.Tokens, rs, table), lx, nil
}

// noopMethod is never invoked: the context-evaluation surface never runs a
// reduction callback, but Elaborate still requires every rule to have one.
func noopMethod(args []ruleset.ReducedArg) (any, error) { return nil, nil }
