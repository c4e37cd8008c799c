// Package lang compiles and evaluates decimal formulas such as
//
//	if $price > 100 then $price - 15% else $price
//
// against a table of named constants, variables, and functions.
//
// # Values
//
// Every value is an arbitrary-precision decimal ([apd.Decimal]). Booleans
// are 1 and 0, and any nonzero value is true. Addition, subtraction, and
// multiplication are exact; division, modulo, and the reciprocal of a
// negative power are rounded half-up to [Precision] significant digits.
//
// # Percentages
//
// A percentage literal such as 20% is stored as 0.2 but remembers that it
// was written as a percentage, as do variables named with the '%' sigil and
// calls to functions registered with [Formula.AddPercentFunction]. When a
// percentage is added to or subtracted from a plain value, it scales that
// value instead:
//
//	100 + 20%        120
//	100 - 20%        80
//	100 * 20%        20
//	50% + 50%        1
//
// # Grammar
//
// Operators, lowest precedence first. Each level is left-associative.
//
//	=  ==  !=  <>  <  <=  >  >=   IN
//	+  -  OR   NOT IN  !IN
//	*  /  MOD  AND  ^
//	unary +  -  !  NOT
//
// Keywords are case-insensitive. Membership tests take an inclusive range or
// a set:
//
//	$x in 1..10          $x in (1 between 10)
//	$x not in [2, 4, 8]  $x !in 1..10
//
// Conditionals have a keyword form and a call form. An omitted else branch
// is zero.
//
//	if $x > 1 then 90 else 0
//	IF($x > 1, 90, 0)
//
// # Symbols
//
// Names are resolved while compiling, so an expression that compiles never
// fails for lack of a symbol. Variables are written with a '$' or '%' sigil
// and may contain non-ASCII letters. Functions declare their parameters with
// a small signature language; see [ParseParameter].
//
// # Errors
//
// Every error matches a sentinel with [errors.Is]. Compile failures also
// match [ErrCompile] and are returned as a [*CompileError] locating the
// offending token; evaluation failures match [ErrEvaluate].
package lang
