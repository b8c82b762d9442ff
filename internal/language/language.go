package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is the error type produced by parsing and validation.
type Error = gqlerror.Error

// ErrorList is a list of parse/validation errors.
type ErrorList = gqlerror.List

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// MustLoadSchema builds an executable schema from SDL, panicking on error.
// Intended for compile-time-constant schema sources.
func MustLoadSchema(name, source string) *Schema {
	return gqlparser.MustLoadSchema(&ast.Source{Name: name, Input: source})
}
