package sqlite

import (
	"database/sql/driver"

	"golang.org/x/text/cases"
	msqlite "modernc.org/sqlite"
)

// casefoldFunc is the SQL function Search folds both sides with. SQLite's own
// lower() and LIKE only fold ASCII, so "école" would not match "ÉCOLE".
const casefoldFunc = "casefold"

func init() {
	// Registered once per process; it applies to every connection opened afterwards.
	if err := msqlite.RegisterDeterministicScalarFunction(casefoldFunc, 1, casefold); err != nil {
		panic(err)
	}
}

func casefold(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return foldString(v), nil
	case []byte:
		return foldString(string(v)), nil
	default:
		return v, nil
	}
}

// foldString applies Unicode case folding. A Caser is stateful, so one is
// built per call.
func foldString(s string) string {
	return cases.Fold().String(s)
}
