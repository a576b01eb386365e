// Package expr parses and evaluates row filter expressions.
//
// An expression is parsed once into an immutable Tree and evaluated many
// times, once per row, against an Env that supplies column values and
// functions. Column references c<N> (1-based) are resolved to 0-based
// indices at parse time, so evaluation never formats or hashes names.
//
// Grammar, lowest precedence first:
//
//	expr    = or
//	or      = and { "||" and }
//	and     = cmp { "&&" cmp }
//	cmp     = sum { ("==" | "!=" | "<" | "<=" | ">" | ">=") sum }
//	sum     = product { ("+" | "-") product }
//	product = power { ("*" | "/" | "%") power }
//	power   = unary [ "^" power ]
//	unary   = ("!" | "-") unary | primary
//	primary = literal | ident | ident "(" [ list ] ")" | "(" [ list ] ")"
//	list    = expr { "," expr }
//
// Eval and EvalBool short-circuit && and ||. Check evaluates every operand,
// so validating an expression against one representative row exercises all
// of it.
package expr
