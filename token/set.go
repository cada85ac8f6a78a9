package token

import "fmt"

// Set is the closed collection of token kinds declared for one grammar. It
// is built once via NewBuilder/Add/Finish and is immutable thereafter.
type Set struct {
	classes []Class

	endOfStream Kind
	errorKind   Kind
	hasEOS      bool
	hasError    bool

	eol        Kind
	indent     Kind
	dedent     Kind
	hasEOL     bool
	hasIndent  bool
	hasDedent  bool

	publicDescendants map[Kind][]Kind
}

// Declaration describes one token kind to be added to a Set.
type Declaration struct {
	Name       string
	Def        *Def
	Role       Role
	CanPrefix  bool // ignored unless Role == RoleNone; defaults true via NewSet's builder
	CanPostfix bool
	Parent     Kind
	HasParent  bool
	Public     bool
}

// builder assembles a Set from a sequence of Declarations, checking the
// invariants from §3 (DATA MODEL) as it goes: exactly one EndOfStream and
// one Error kind, at most one each of EndOfLine/Indent/Dedent, and no cycles
// in the from-relation.
type builder struct {
	set *Set
}

// NewBuilder returns a Set builder. Call Add for each declared kind, then
// Finish to validate and freeze the Set.
func NewBuilder() *builder {
	return &builder{set: &Set{}}
}

// Add registers decl and returns the Kind assigned to it (simply its index
// of declaration, in [0, K)).
func (b *builder) Add(decl Declaration) (Kind, error) {
	id := Kind(len(b.set.classes))

	canPrefix, canPostfix := true, true
	if decl.Role == RoleNone {
		canPrefix, canPostfix = decl.CanPrefix, decl.CanPostfix
	}

	cls := Class{
		id:         id,
		name:       decl.Name,
		role:       decl.Role,
		def:        decl.Def,
		canPrefix:  canPrefix,
		canPostfix: canPostfix,
		hasParent:  decl.HasParent,
		parent:     decl.Parent,
		public:     decl.Public,
	}

	switch decl.Role {
	case RoleEndOfStream:
		if b.set.hasEOS {
			return 0, fmt.Errorf("token set already has an EndOfStream kind")
		}
		b.set.hasEOS = true
		b.set.endOfStream = id
	case RoleError:
		if b.set.hasError {
			return 0, fmt.Errorf("token set already has an Error kind")
		}
		b.set.hasError = true
		b.set.errorKind = id
	case RoleEndOfLine:
		if b.set.hasEOL {
			return 0, fmt.Errorf("token set already has an EndOfLine kind")
		}
		b.set.hasEOL = true
		b.set.eol = id
	case RoleIndent:
		if b.set.hasIndent {
			return 0, fmt.Errorf("token set already has an Indent kind")
		}
		b.set.hasIndent = true
		b.set.indent = id
	case RoleDedent:
		if b.set.hasDedent {
			return 0, fmt.Errorf("token set already has a Dedent kind")
		}
		b.set.hasDedent = true
		b.set.dedent = id
	}

	b.set.classes = append(b.set.classes, cls)
	return id, nil
}

// Finish validates the Set's invariants and computes the public-children
// mapping (§3 "Public children mapping"). It is an error to call Finish
// before exactly one EndOfStream and one Error kind have been declared.
func (b *builder) Finish() (*Set, error) {
	s := b.set

	if !s.hasEOS {
		return nil, fmt.Errorf("token set must declare exactly one EndOfStream kind")
	}
	if !s.hasError {
		return nil, fmt.Errorf("token set must declare exactly one Error kind")
	}

	if err := detectFromCycles(s); err != nil {
		return nil, err
	}

	s.publicDescendants = computePublicDescendants(s)

	return s, nil
}

// detectFromCycles walks each kind's from-chain to the root, failing if any
// chain revisits a kind already seen (§3 invariant: "no cycles").
func detectFromCycles(s *Set) error {
	for _, c := range s.classes {
		seen := map[Kind]bool{c.id: true}
		cur := c
		for cur.hasParent {
			if seen[cur.parent] {
				return fmt.Errorf("cycle detected in from-relation involving kind %q", cur.name)
			}
			seen[cur.parent] = true
			cur = s.classes[cur.parent]
		}
	}
	return nil
}

// computePublicDescendants returns, for every kind t, the set of transitive
// from-descendants reachable by an unbroken chain of public from-edges.
func computePublicDescendants(s *Set) map[Kind][]Kind {
	children := map[Kind][]Kind{}
	for _, c := range s.classes {
		if c.hasParent {
			children[c.parent] = append(children[c.parent], c.id)
		}
	}

	result := map[Kind][]Kind{}
	var collect func(root Kind) []Kind
	collect = func(root Kind) []Kind {
		var out []Kind
		for _, child := range children[root] {
			childClass := s.classes[child]
			if !childClass.public {
				continue
			}
			out = append(out, child)
			out = append(out, collect(child)...)
		}
		return out
	}

	for _, c := range s.classes {
		result[c.id] = collect(c.id)
	}
	return result
}

// Len returns the number of declared kinds, K.
func (s *Set) Len() int { return len(s.classes) }

// Class returns the Class for k. Panics if k is out of range; callers in
// this module only ever hold kinds obtained from this same Set.
func (s *Set) Class(k Kind) Class { return s.classes[k] }

// EndOfStream, Error, EndOfLine, Indent, and Dedent return the designated
// role kinds. The boolean results are false for the optional roles
// (EndOfLine/Indent/Dedent) when not configured.
func (s *Set) EndOfStream() Kind        { return s.endOfStream }
func (s *Set) Error() Kind              { return s.errorKind }
func (s *Set) EndOfLine() (Kind, bool)  { return s.eol, s.hasEOL }
func (s *Set) Indent() (Kind, bool)     { return s.indent, s.hasIndent }
func (s *Set) Dedent() (Kind, bool)     { return s.dedent, s.hasDedent }

// PublicDescendants returns the transitive public from-descendants of t, per
// §3's "Public children mapping".
func (s *Set) PublicDescendants(t Kind) []Kind {
	return s.publicDescendants[t]
}

// ExpandPublic returns kinds plus the public descendants of every kind in
// kinds, deduplicated. Used by rule-set elaboration (§4.4) to expand a
// terminal parameter's listed tokens.
func (s *Set) ExpandPublic(kinds []Kind) []Kind {
	seen := map[Kind]bool{}
	var out []Kind
	add := func(k Kind) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range kinds {
		add(k)
		for _, d := range s.publicDescendants[k] {
			add(d)
		}
	}
	return out
}
