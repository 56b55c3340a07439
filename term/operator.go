package term

// Assoc is the associativity of a binary operator.
type Assoc uint8

const (
	AssocLeft Assoc = iota
	AssocRight
)

type operator struct {
	prec  int
	assoc Assoc
}

//nolint:gochecknoglobals
var binaryOperators = map[string]operator{
	"??":         {1, AssocLeft},
	"||":         {1, AssocLeft},
	"&&":         {2, AssocLeft},
	"|":          {3, AssocLeft},
	"^":          {4, AssocLeft},
	"&":          {5, AssocLeft},
	"==":         {6, AssocLeft},
	"!=":         {6, AssocLeft},
	"===":        {6, AssocLeft},
	"!==":        {6, AssocLeft},
	"<":          {7, AssocLeft},
	">":          {7, AssocLeft},
	"<=":         {7, AssocLeft},
	">=":         {7, AssocLeft},
	"instanceof": {7, AssocLeft},
	"in":         {7, AssocLeft},
	"<<":         {8, AssocLeft},
	">>":         {8, AssocLeft},
	">>>":        {8, AssocLeft},
	"+":          {9, AssocLeft},
	"-":          {9, AssocLeft},
	"*":          {10, AssocLeft},
	"/":          {10, AssocLeft},
	"%":          {10, AssocLeft},
	"**":         {11, AssocRight},
}

//nolint:gochecknoglobals
var unaryOperators = map[string]bool{
	"+": true, "-": true, "!": true, "~": true, "++": true, "--": true,
	"typeof": true, "void": true, "delete": true,
}

// PrefixPrecedence is the binding power of every prefix unary operator.
const PrefixPrecedence = 14

// BinaryOperator returns the precedence and associativity of op. Higher
// precedence binds tighter.
func BinaryOperator(op string) (prec int, assoc Assoc, ok bool) {
	o, ok := binaryOperators[op]

	return o.prec, o.assoc, ok
}

// IsBinaryOperator reports whether op is a binary operator.
func IsBinaryOperator(op string) bool {
	_, ok := binaryOperators[op]

	return ok
}

// IsUnaryOperator reports whether op is a prefix unary operator.
func IsUnaryOperator(op string) bool { return unaryOperators[op] }

// OperatorLess reports whether an operator of precedence right should bind
// tighter than the pending operator of precedence left.
func OperatorLess(left, right int, assoc Assoc) bool {
	if assoc == AssocRight {
		return left <= right
	}

	return left < right
}
