package sqlite

import (
	"database/sql/driver"
	"strings"

	sqlitedrv "modernc.org/sqlite"
)

// CASE FOLDING:
// SQLite's built-in lower() only folds ASCII letters, so lower('Ö') is still
// 'Ö' and a search for "ökon" would miss "Ökonomie". MongoDB's $regex with the
// "i" option folds Unicode. To give both stores the same subject search we
// register fold(x), implemented in Go with strings.ToLower, and compare
// fold(subject) against fold(?).
//
// Functions registered on the driver apply to every connection opened
// afterwards, so this runs once in init, before New can open anything.
func init() {
	sqlitedrv.MustRegisterDeterministicScalarFunction("fold", 1, foldFunc)
}

func foldFunc(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		// NULL and non-text values pass through; instr() on them is never > 0.
		return v, nil
	}
}
