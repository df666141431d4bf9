package query

// Op is a comparison operator accepted in filters. The set is closed:
// anything ParseOp does not recognize is rejected at parse time.
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

var opSQL = map[Op]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// opOrder keeps compiled predicates in a stable order.
var opOrder = map[Op]int{OpEq: 0, OpNe: 1, OpGt: 2, OpGte: 3, OpLt: 4, OpLte: 5}

func ParseOp(s string) (Op, bool) {
	op := Op(s)
	_, ok := opSQL[op]
	return op, ok
}

// SQL returns the native comparison operator.
func (o Op) SQL() string {
	return opSQL[o]
}
