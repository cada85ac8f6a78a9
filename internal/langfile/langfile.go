// Package langfile loads a declarative TOML description of a grammar's token
// kinds and reduction rules into the token.Set and ruleset.Declaration the
// rest of the module builds on, the way internal/tqw loads a TQW world file
// into game data. A langfile cannot carry executable reduction callbacks, so
// Load returns DeclaredRule values with Method left nil; the host attaches
// callbacks by name afterward with AttachMethods.
package langfile

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/gudgeon/ruleset"
	"github.com/dekarrin/gudgeon/token"
)

// Spec is the fully-resolved result of loading one langfile: a built token
// Set, the root production's name, and the declared rules in file order
// (paired 1:1 with RuleNames) awaiting their reduction callbacks.
type Spec struct {
	Tokens      *token.Set
	RootType    string
	RootMaxRank int

	Rules     []ruleset.DeclaredRule
	RuleNames []string
}

type tomlFile struct {
	Format string      `toml:"format"`
	Type   string      `toml:"type"`
	Root   tomlRoot    `toml:"root"`
	Token  []tomlToken `toml:"token"`
	Rule   []tomlRule  `toml:"rule"`
}

type tomlRoot struct {
	Type      string `toml:"type"`
	MaxRank   int    `toml:"max_rank"`
	Unbounded bool   `toml:"unbounded"`
}

type tomlToken struct {
	Name            string   `toml:"name"`
	Role            string   `toml:"role"`
	Regex           string   `toml:"regex"`
	CaseInsensitive bool     `toml:"case_insensitive"`
	Literals        []string `toml:"literals"`
	SelfNamed       bool     `toml:"self_named"`
	CanPrefix       *bool    `toml:"can_prefix"`
	CanPostfix      *bool    `toml:"can_postfix"`
	From            string   `toml:"from"`
	Public          bool     `toml:"public"`
}

type tomlRule struct {
	Name       string      `toml:"name"`
	Result     string      `toml:"result"`
	Rank       int         `toml:"rank"`
	ContextTag *int        `toml:"context_tag"`
	Param      []tomlParam `toml:"param"`
}

type tomlParam struct {
	Kind string `toml:"kind"` // "terminal", "nonterminal", or "list"

	// terminal
	Tokens   []string `toml:"tokens"`
	Optional bool     `toml:"optional"`
	Want     string   `toml:"want"` // "kind", "substring", or "substring_span"

	// nonterminal / list
	ResultType       string `toml:"result_type"`
	MaxRank          int    `toml:"max_rank"`
	MaxRankUnbounded bool   `toml:"max_rank_unbounded"`

	// list only
	ElementType string  `toml:"element_type"`
	Min         int     `toml:"min"`
	Separator   *string `toml:"separator"`
	Terminator  *string `toml:"terminator"`
}

// Load reads and decodes the langfile at path into a Spec. Token kinds that
// reference a `from` parent must be declared after that parent in the file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("langfile: %w", err)
	}

	spec, err := LoadString(string(data))
	if err != nil {
		return nil, fmt.Errorf("langfile: decoding %s: %w", path, err)
	}
	return spec, nil
}

// LoadString decodes langfile TOML text directly, for callers that ship a
// grammar embedded in their binary rather than as a standalone file.
func LoadString(data string) (*Spec, error) {
	var raw tomlFile
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("langfile: %w", err)
	}

	return buildSpec(raw)
}

func buildSpec(raw tomlFile) (*Spec, error) {
	b := token.NewBuilder()
	byName := map[string]token.Kind{}

	for _, tt := range raw.Token {
		decl, err := tt.toDeclaration(byName)
		if err != nil {
			return nil, err
		}

		kind, err := b.Add(decl)
		if err != nil {
			return nil, fmt.Errorf("langfile: token %q: %w", tt.Name, err)
		}
		byName[tt.Name] = kind
	}

	tokens, err := b.Finish()
	if err != nil {
		return nil, fmt.Errorf("langfile: %w", err)
	}

	spec := &Spec{
		Tokens:      tokens,
		RootType:    raw.Root.Type,
		RootMaxRank: raw.Root.MaxRank,
	}
	if raw.Root.Unbounded {
		spec.RootMaxRank = -1
	}

	for _, tr := range raw.Rule {
		params := make([]ruleset.Param, 0, len(tr.Param))
		for _, tp := range tr.Param {
			p, err := tp.toParam(byName)
			if err != nil {
				return nil, fmt.Errorf("langfile: rule %q: %w", tr.Name, err)
			}
			params = append(params, p)
		}

		spec.Rules = append(spec.Rules, ruleset.DeclaredRule{
			ResultType: tr.Result,
			Rank:       tr.Rank,
			ContextTag: tr.ContextTag,
			Params:     params,
		})
		spec.RuleNames = append(spec.RuleNames, tr.Name)
	}

	return spec, nil
}

func (tt tomlToken) toDeclaration(byName map[string]token.Kind) (token.Declaration, error) {
	role, err := roleFromString(tt.Role)
	if err != nil {
		return token.Declaration{}, fmt.Errorf("token %q: %w", tt.Name, err)
	}

	var def *token.Def
	switch {
	case tt.SelfNamed:
		def = token.NewSelfNamedDef(tt.Name)
	case len(tt.Literals) > 0:
		def = token.NewLiteralDef(tt.Literals, tt.CaseInsensitive)
	case tt.Regex != "":
		d, err := token.NewRegexDef(tt.Regex, tt.CaseInsensitive)
		if err != nil {
			return token.Declaration{}, fmt.Errorf("token %q: %w", tt.Name, err)
		}
		def = d
	}

	decl := token.Declaration{
		Name:   tt.Name,
		Def:    def,
		Role:   role,
		Public: tt.Public,
	}
	decl.CanPrefix = tt.CanPrefix == nil || *tt.CanPrefix
	decl.CanPostfix = tt.CanPostfix == nil || *tt.CanPostfix

	if tt.From != "" {
		parent, ok := byName[tt.From]
		if !ok {
			return token.Declaration{}, fmt.Errorf("token %q: from parent %q not yet declared", tt.Name, tt.From)
		}
		decl.HasParent = true
		decl.Parent = parent
	}

	return decl, nil
}

func (tp tomlParam) toParam(byName map[string]token.Kind) (ruleset.Param, error) {
	maxRank := tp.MaxRank
	if tp.MaxRankUnbounded {
		maxRank = -1
	}

	switch tp.Kind {
	case "terminal":
		kinds := make([]token.Kind, 0, len(tp.Tokens))
		for _, name := range tp.Tokens {
			k, ok := byName[name]
			if !ok {
				return ruleset.Param{}, fmt.Errorf("terminal parameter references undeclared token %q", name)
			}
			kinds = append(kinds, k)
		}
		want, err := wantFromString(tp.Want)
		if err != nil {
			return ruleset.Param{}, err
		}
		return ruleset.Term(want, tp.Optional, kinds...), nil

	case "nonterminal":
		return ruleset.NonTerm(tp.ResultType, maxRank, tp.Optional), nil

	case "list":
		var sep, term *token.Kind
		if tp.Separator != nil {
			k, ok := byName[*tp.Separator]
			if !ok {
				return ruleset.Param{}, fmt.Errorf("list parameter references undeclared separator token %q", *tp.Separator)
			}
			sep = &k
		}
		if tp.Terminator != nil {
			k, ok := byName[*tp.Terminator]
			if !ok {
				return ruleset.Param{}, fmt.Errorf("list parameter references undeclared terminator token %q", *tp.Terminator)
			}
			term = &k
		}
		return ruleset.List(tp.ElementType, tp.Min, sep, term, maxRank), nil

	default:
		return ruleset.Param{}, fmt.Errorf("parameter has unknown kind %q (want terminal, nonterminal, or list)", tp.Kind)
	}
}

func roleFromString(s string) (token.Role, error) {
	switch s {
	case "", "none":
		return token.RoleNone, nil
	case "end_of_stream":
		return token.RoleEndOfStream, nil
	case "error":
		return token.RoleError, nil
	case "end_of_line":
		return token.RoleEndOfLine, nil
	case "indent":
		return token.RoleIndent, nil
	case "dedent":
		return token.RoleDedent, nil
	default:
		return token.RoleNone, fmt.Errorf("unknown role %q", s)
	}
}

func wantFromString(s string) (ruleset.ArgKind, error) {
	switch s {
	case "", "kind":
		return ruleset.ArgKind_TokenKind, nil
	case "substring":
		return ruleset.ArgKind_Substring, nil
	case "substring_span":
		return ruleset.ArgKind_SubstringAndSpan, nil
	default:
		return 0, fmt.Errorf("unknown terminal parameter want %q", s)
	}
}

// AttachMethods binds each rule's reduction callback by the name it was
// declared with, erroring if a name has no corresponding entry in methods.
func AttachMethods(rules []ruleset.DeclaredRule, names []string, methods map[string]ruleset.ReduceFunc) error {
	for i, name := range names {
		m, ok := methods[name]
		if !ok {
			return fmt.Errorf("langfile: no reduction callback registered for rule %q", name)
		}
		rules[i].Method = m
	}
	return nil
}
