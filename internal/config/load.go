package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// Load reads and validates a CUE solve configuration.
func Load(path string) (*Solve, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, path)
}

// Parse validates src against #Config and decodes it. filename is used in
// error positions.
func Parse(src []byte, filename string) (*Solve, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, filename)
	}

	v = schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, filename)
	}

	s, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// decode reads a validated #Config value.
func decode(v cue.Value) (*Solve, error) {
	s := &Solve{}
	var err error

	if s.Model, err = v.LookupPath(cue.ParsePath("model")).String(); err != nil {
		return nil, fieldError("model", v, err)
	}
	if f := v.LookupPath(cue.ParsePath("target")); f.Exists() {
		if s.Target, err = f.String(); err != nil {
			return nil, fieldError("target", f, err)
		}
	}

	if f := v.LookupPath(cue.ParsePath("inputs")); f.Exists() {
		iter, err := f.Fields()
		if err != nil {
			return nil, fieldError("inputs", f, err)
		}
		s.Inputs = make(map[string]float64)
		for iter.Next() {
			x, err := iter.Value().Float64()
			if err != nil {
				return nil, fieldError("inputs."+iter.Selector().Unquoted(), iter.Value(), err)
			}
			s.Inputs[iter.Selector().Unquoted()] = x
		}
	}

	if f := v.LookupPath(cue.ParsePath("min_index")); f.Exists() {
		n, err := intField(f, "min_index")
		if err != nil {
			return nil, err
		}
		s.MinIndex = &n
	}
	if f := v.LookupPath(cue.ParsePath("max_index")); f.Exists() {
		if s.MaxIndex, err = intField(f, "max_index"); err != nil {
			return nil, err
		}
	}
	if f := v.LookupPath(cue.ParsePath("search_depth")); f.Exists() {
		if s.SearchDepth, err = intField(f, "search_depth"); err != nil {
			return nil, err
		}
	}

	if f := v.LookupPath(cue.ParsePath("termination.index_at_least")); f.Exists() {
		n, err := intField(f, "termination.index_at_least")
		if err != nil {
			return nil, err
		}
		s.Termination.IndexAtLeast = &n
	}
	if f := v.LookupPath(cue.ParsePath("termination.value_at_least")); f.Exists() {
		x, err := f.Float64()
		if err != nil {
			return nil, fieldError("termination.value_at_least", f, err)
		}
		s.Termination.ValueAtLeast = &x
	}
	if f := v.LookupPath(cue.ParsePath("termination.value_at_most")); f.Exists() {
		x, err := f.Float64()
		if err != nil {
			return nil, fieldError("termination.value_at_most", f, err)
		}
		s.Termination.ValueAtMost = &x
	}

	if s.Debug.Nodes, err = stringList(v, "debug.nodes"); err != nil {
		return nil, err
	}
	if s.Debug.Edges, err = stringList(v, "debug.edges"); err != nil {
		return nil, err
	}
	return s, nil
}

func intField(f cue.Value, name string) (int, error) {
	n, err := f.Int64()
	if err != nil {
		return 0, fieldError(name, f, err)
	}
	return int(n), nil
}

func stringList(v cue.Value, path string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, fieldError(path, f, err)
	}
	var out []string
	for iter.Next() {
		str, err := iter.Value().String()
		if err != nil {
			return nil, fieldError(path, iter.Value(), err)
		}
		out = append(out, str)
	}
	return out, nil
}

func fieldError(field string, v cue.Value, err error) *Error {
	return &Error{Field: field, Message: err.Error(), Pos: formatPos(v.Pos())}
}

// formatCUEError extracts position info from CUE errors, preferring a
// position in filename over one in the schema.
func formatCUEError(err error, filename string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	e := &Error{Field: "cue", Message: first.Error()}
	if path := first.Path(); len(path) > 0 {
		e.Field = joinPath(path)
	}
	for _, p := range errors.Positions(first) {
		if e.Pos == "" || p.Filename() == filename {
			e.Pos = formatPos(p)
		}
		if p.Filename() == filename {
			break
		}
	}
	return e
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}

func formatPos(p token.Pos) string {
	if !p.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename(), p.Line(), p.Column())
}
