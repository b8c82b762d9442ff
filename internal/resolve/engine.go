// Package resolve implements the query-shaped resolution engine: it
// parses and validates operations, extracts the requested subscription
// shape, and resolves entity relations through per-request batching
// loaders so that each relation kind costs one storage call per response
// level.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphfeed/graphfeed/internal/language"
	"github.com/graphfeed/graphfeed/internal/store"
)

// Engine executes GraphQL operations against a store. It is stateless
// across requests; all batching and memoization lives in per-request
// loaders.
type Engine struct {
	store    store.Store
	schema   *language.Schema
	maxDepth int
}

func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, schema: Schema, maxDepth: DefaultMaxDepth}
}

// Request is one operation to execute.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// execution is the per-request state: the loaders, the coerced variables
// and the fragment table of the active document.
type execution struct {
	store   store.Store
	loaders *Loaders
	proj    *projector
	vars    map[string]any
	frags   language.FragmentDefinitionList
}

// Execute runs one operation to completion. Parse, depth and validation
// failures yield an errors-only result without touching the store; field
// resolution failures are isolated to their root field.
func (e *Engine) Execute(ctx context.Context, req Request) *Result {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return errorResult(errorMessages(err)...)
	}

	op, opErr := selectOperation(doc, req.OperationName)
	if opErr != "" {
		return errorResult(opErr)
	}
	if op.Operation == language.Subscription {
		return errorResult("subscription operations are not supported")
	}

	if depth := operationDepth(op.SelectionSet, doc.Fragments); depth > e.maxDepth {
		return errorResult(fmt.Sprintf("operation depth %d exceeds the limit of %d", depth, e.maxDepth))
	}

	vars, err := coerceVariableValues(e.schema, op, req.Variables)
	if err != nil {
		return errorResult(err.Error())
	}

	rootDef := e.schema.Query
	if op.Operation == language.Mutation {
		rootDef = e.schema.Mutation
	}
	if rootDef == nil {
		return errorResult(fmt.Sprintf("schema does not support %s operations", op.Operation))
	}
	if errs := validateSelections(e.schema, rootDef, op.SelectionSet, doc.Fragments); len(errs) > 0 {
		return &Result{Errors: errs}
	}

	fields := collectFields(rootDef.Name, op.SelectionSet, vars, doc.Fragments)

	// Coerce every root argument before resolving anything: a malformed
	// identifier anywhere in the operation means no storage call at all.
	fieldArgs := make([]map[string]any, len(fields))
	for i, cf := range fields {
		fieldDef := rootDef.Fields.ForName(cf.Name())
		if fieldDef == nil {
			continue
		}
		args, err := coerceArguments(e.schema, fieldDef, cf.Fields[0].Arguments, vars)
		if err != nil {
			return errorResult(err.Error())
		}
		fieldArgs[i] = args
	}

	loaders := NewLoaders(e.store)
	exec := &execution{
		store:   e.store,
		loaders: loaders,
		vars:    vars,
		frags:   doc.Fragments,
	}
	exec.proj = &projector{loaders: loaders, store: e.store, vars: vars, frags: doc.Fragments}

	res := &Result{Data: make(map[string]any, len(fields))}
	for i, cf := range fields {
		var value any
		var fieldErr error
		if op.Operation == language.Mutation {
			value, fieldErr = exec.resolveMutation(ctx, cf, fieldArgs[i])
		} else {
			value, fieldErr = exec.resolveQuery(ctx, cf, fieldArgs[i])
		}
		if fieldErr != nil {
			res.Errors = append(res.Errors, fieldError(cf.ResponseName, fieldErr))
			res.Data[cf.ResponseName] = nil
			continue
		}
		res.Data[cf.ResponseName] = value
	}
	return res
}

// selectOperation picks the operation to run, requiring a name when the
// document contains more than one.
func selectOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, string) {
	if name != "" {
		op := doc.Operations.ForName(name)
		if op == nil {
			return nil, fmt.Sprintf("operation %q is not defined in the document", name)
		}
		return op, ""
	}
	if len(doc.Operations) == 1 {
		return doc.Operations[0], ""
	}
	return nil, "operation name is required when the document defines multiple operations"
}

// fieldError converts a resolver failure into a response error rooted at
// the failed field. Storage sentinels get a stable extension code.
func fieldError(responseName string, err error) Error {
	out := Error{Message: err.Error(), Path: Path{responseName}}
	switch {
	case errors.Is(err, store.ErrNotFound):
		out.Extensions = map[string]any{"code": "NOT_FOUND"}
	case errors.Is(err, store.ErrConflict):
		out.Extensions = map[string]any{"code": "CONFLICT"}
	case errors.Is(err, store.ErrForeignKey):
		out.Extensions = map[string]any{"code": "FOREIGN_KEY"}
	}
	return out
}

// errorMessages flattens a parse error, which may be a single error or a
// list, into plain messages.
func errorMessages(err error) []string {
	var list language.ErrorList
	if errors.As(err, &list) {
		msgs := make([]string, len(list))
		for i, e := range list {
			msgs[i] = e.Message
		}
		return msgs
	}
	var single *language.Error
	if errors.As(err, &single) {
		return []string{single.Message}
	}
	return []string{err.Error()}
}
