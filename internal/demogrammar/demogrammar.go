// Package demogrammar holds the small arithmetic langfile grammar shared by
// the cmd/gudgeonrepl and cmd/gudgeonls demo tools, so both exercise the same
// token kinds and rule shapes without duplicating the TOML between them.
package demogrammar

// Arithmetic declares numbers, + - * /, and parentheses over a ranked Expr
// type, rule names matching the ones the two demo tools attach callbacks to
// ("atom", "paren", "muldiv", "addsub").
const Arithmetic = `
format = "gudgeon"
type = "LANG"

[root]
type = "Expr"
max_rank = 2

[[token]]
name = "$"
role = "end_of_stream"

[[token]]
name = "error"
role = "error"

[[token]]
name = "number"
regex = "[0-9]+"

[[token]]
name = "+"
literals = ["+"]

[[token]]
name = "-"
literals = ["-"]

[[token]]
name = "*"
literals = ["*"]

[[token]]
name = "/"
literals = ["/"]

[[token]]
name = "("
literals = ["("]

[[token]]
name = ")"
literals = [")"]

[[rule]]
name = "atom"
result = "Expr"
rank = 0
[[rule.param]]
kind = "terminal"
tokens = ["number"]
want = "substring"

[[rule]]
name = "paren"
result = "Expr"
rank = 0
[[rule.param]]
kind = "terminal"
tokens = ["("]
[[rule.param]]
kind = "nonterminal"
result_type = "Expr"
max_rank = 2
[[rule.param]]
kind = "terminal"
tokens = [")"]

[[rule]]
name = "muldiv"
result = "Expr"
rank = 1
[[rule.param]]
kind = "nonterminal"
result_type = "Expr"
max_rank = 1
[[rule.param]]
kind = "terminal"
tokens = ["*", "/"]
want = "substring"
[[rule.param]]
kind = "nonterminal"
result_type = "Expr"
max_rank = 0

[[rule]]
name = "addsub"
result = "Expr"
rank = 2
[[rule.param]]
kind = "nonterminal"
result_type = "Expr"
max_rank = 2
[[rule.param]]
kind = "terminal"
tokens = ["+", "-"]
want = "substring"
[[rule.param]]
kind = "nonterminal"
result_type = "Expr"
max_rank = 1
`
