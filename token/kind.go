// Package token declares the closed enumeration of lexical categories a
// grammar is built from (Kind), the compiled matchers that recognize them
// (Def), and the Set that collects a grammar's kinds together with their
// from-relations and infix flags.
package token

import "fmt"

// Kind identifies a lexical category. Values are small integers in [0, K)
// where K is the number of kinds registered on a Set; this keeps the action
// table (indexed by kind) a dense matrix rather than a map.
type Kind int

// Role distinguishes the handful of kinds the lexer and parser treat
// specially. All other kinds carry RoleNone and are ordinary user-declared
// terminals.
type Role int

const (
	RoleNone Role = iota
	RoleEndOfStream
	RoleError
	RoleEndOfLine
	RoleIndent
	RoleDedent
)

func (r Role) String() string {
	switch r {
	case RoleEndOfStream:
		return "end-of-stream"
	case RoleError:
		return "error"
	case RoleEndOfLine:
		return "end-of-line"
	case RoleIndent:
		return "indent"
	case RoleDedent:
		return "dedent"
	default:
		return "none"
	}
}

// Class is the compiled description of one token kind: its id, human name,
// role, match specification (nil for the zero-length role kinds), infix
// flags, and from-relation to a parent kind.
type Class struct {
	id   Kind
	name string
	role Role

	def *Def

	canPrefix  bool
	canPostfix bool

	hasParent bool
	parent    Kind
	public    bool
}

// ID returns the kind this class describes.
func (c Class) ID() Kind { return c.id }

// Human returns the display name used in error messages.
func (c Class) Human() string { return c.name }

// Role returns the class's special role, or RoleNone for ordinary terminals.
func (c Class) Role() Role { return c.role }

// Def returns the class's compiled matcher, or nil for role kinds that are
// never matched against text directly (EndOfStream, Indent, Dedent,
// EndOfLine).
func (c Class) Def() *Def { return c.def }

// CanBePrefix returns whether a token of this kind may begin a logical line.
// When false, the lexer drops an EndOfLine/Indent pair (or a lone EndOfLine)
// emitted just before the token, joining it to the previous line.
func (c Class) CanBePrefix() bool { return c.canPrefix }

// CanBePostfix returns whether a token of this kind may end a logical line.
// When false, the lexer drops the EndOfLine/Indent pair (or lone EndOfLine)
// that the next newline after the token would emit.
func (c Class) CanBePostfix() bool { return c.canPostfix }

// Parent returns the kind this class is a from-descendant of, and whether it
// has one at all (roots do not).
func (c Class) Parent() (Kind, bool) { return c.parent, c.hasParent }

// Public returns whether the from-relation to Parent() is public, meaning a
// rule accepting Parent() implicitly accepts this kind too.
func (c Class) Public() bool { return c.public }

func (c Class) String() string {
	return fmt.Sprintf("Class<%d:%s>", c.id, c.name)
}
