package internal

import (
	"fmt"
	"slices"
	"strings"
)

// Column is the shape a backend expects one table column to have.
type Column struct {
	Type     string
	Nullable bool
}

// Schema maps column names to their expected shape.
type Schema map[string]Column

// SchemaError lists every way a table differs from its expected Schema.
type SchemaError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s has an unexpected layout", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatched, "; "))
	}
	return b.String()
}

// CheckSchema compares the columns read from a live table against want.
// Column types are compared case-insensitively. Extra columns are allowed.
func CheckSchema(table string, want, got Schema) error {
	serr := &SchemaError{Table: table}

	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		w := want[name]
		g, ok := got[name]
		if !ok {
			serr.Missing = append(serr.Missing, name)
			continue
		}
		if !strings.EqualFold(g.Type, w.Type) {
			serr.Mismatched = append(serr.Mismatched,
				fmt.Sprintf("%s: expected %s, got %s", name, w.Type, strings.ToLower(g.Type)))
		}
		if g.Nullable != w.Nullable {
			serr.Mismatched = append(serr.Mismatched,
				fmt.Sprintf("%s: expected nullable=%t, got nullable=%t", name, w.Nullable, g.Nullable))
		}
	}

	if len(serr.Missing) == 0 && len(serr.Mismatched) == 0 {
		return nil
	}
	return serr
}
