package harness

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Path     []engine.Step // critical path for context, nil for store assertions
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Path) > 0 {
		fmt.Fprintf(&buf, "\nCritical path:\n")
		for _, s := range e.Path {
			fmt.Fprintf(&buf, "  [%d] %s -> %s[%d] = %v\n", s.Seq, s.Edge, s.Node, s.Index, s.Value)
		}
	}
	return buf.String()
}

// assertPathContains checks that the edge fired on the critical path, at
// the given index when one is set.
func assertPathContains(path []engine.Step, assertion Assertion) error {
	for _, s := range path {
		if s.Edge != assertion.Edge {
			continue
		}
		if assertion.Index == nil || *assertion.Index == s.Index {
			return nil
		}
	}

	expected := "edge " + assertion.Edge
	if assertion.Index != nil {
		expected += fmt.Sprintf(" at index %d", *assertion.Index)
	}
	return &AssertionError{
		Type:     AssertPathContains,
		Expected: expected,
		Actual:   "not found on critical path",
		Path:     path,
	}
}

// assertPathOrder checks that the edges first fire in the given order.
// Intervening firings are allowed.
func assertPathOrder(path []engine.Step, assertion Assertion) error {
	positions := make(map[string]int)
	for i, s := range path {
		if _, ok := positions[s.Edge]; !ok {
			positions[s.Edge] = i + 1 // 1-indexed for readability
		}
	}

	for _, edge := range assertion.Edges {
		if positions[edge] == 0 {
			return &AssertionError{
				Type:     AssertPathOrder,
				Expected: fmt.Sprintf("all edges present: %v", assertion.Edges),
				Actual:   fmt.Sprintf("missing edge: %s", edge),
				Path:     path,
			}
		}
	}

	for i := 1; i < len(assertion.Edges); i++ {
		prev := assertion.Edges[i-1]
		curr := assertion.Edges[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertPathOrder,
				Expected: fmt.Sprintf("edges in order: %v", assertion.Edges),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Path: path,
			}
		}
	}
	return nil
}

// assertPathCount checks that the edge fires exactly Count times.
func assertPathCount(path []engine.Step, assertion Assertion) error {
	count := 0
	for _, s := range path {
		if s.Edge == assertion.Edge {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertPathCount,
			Expected: fmt.Sprintf("%d firings of %s", assertion.Count, assertion.Edge),
			Actual:   fmt.Sprintf("%d firings", count),
			Path:     path,
		}
	}
	return nil
}

// assertFinalState checks that exactly one row of a run log table matches
// Where and holds the Expect values.
//
// Table and column names are validated against a whitelist pattern since
// identifiers cannot be parameterized.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "row not found",
		}
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actual := make(map[string]any, len(columns))
	for i, col := range columns {
		actual[col] = values[i]
	}

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expected := assertion.Expect[key]
		got, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q to exist", key),
				Actual:   fmt.Sprintf("column %q not present in result columns: %v", key, columns),
			}
		}
		if !stateValuesEqual(expected, got) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q = %v (type %T)", key, expected, expected),
				Actual:   fmt.Sprintf("column %q = %v (type %T)", key, got, got),
			}
		}
	}
	return nil
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are sorted
// for determinism.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}
	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML scalar to a SQL-compatible value.
func toSQLValue(v any) any {
	switch val := v.(type) {
	case string, int, int64, bool, float64:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// stateValuesEqual compares a YAML value against a SQLite column value.
// SQLite returns int64 for integers, float64 for reals and stores
// booleans as 0/1.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}

	switch exp := expected.(type) {
	case string:
		got, ok := actual.(string)
		return ok && exp == got
	case int:
		switch got := actual.(type) {
		case int64:
			return int64(exp) == got
		case float64:
			return float64(exp) == got
		}
		return false
	case float64:
		switch got := actual.(type) {
		case float64:
			return approxEqual(exp, got, defaultTolerance)
		case int64:
			return exp == float64(got)
		}
		return false
	case bool:
		switch got := actual.(type) {
		case bool:
			return exp == got
		case int64:
			return exp == (got != 0)
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}

// AssertionContext provides database access for final_state assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against a solve. trace is nil
// for unsolved runs, in which case path assertions see an empty path.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(trace *engine.Trace, assertions []Assertion, actx *AssertionContext) []string {
	var path []engine.Step
	if trace != nil {
		path = trace.Path
	}

	var errs []string
	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertPathContains:
			err = assertPathContains(path, assertion)
		case AssertPathOrder:
			err = assertPathOrder(path, assertion)
		case AssertPathCount:
			err = assertPathCount(path, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
