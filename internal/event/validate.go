package event

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

// schemaSet holds the compiled schema definitions. The cue.Context that
// compiled them must also build every value they are unified with.
type schemaSet struct {
	ctx   *cue.Context
	event cue.Value
	log   cue.Value
}

var (
	schemaOnce sync.Once
	schemas    *schemaSet
)

func loadSchemas() *schemaSet {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource)
		if err := v.Err(); err != nil {
			// The schema is embedded program text; failing to compile it is
			// a build defect, not a runtime condition.
			panic(fmt.Sprintf("event: compiling embedded schema: %v", err))
		}
		schemas = &schemaSet{
			ctx:   ctx,
			event: v.LookupPath(cue.ParsePath("#GroveEvent")),
			log:   v.LookupPath(cue.ParsePath("#GroveEventLog")),
		}
	})
	return schemas
}

// Validate checks a single candidate event against the closed union schema.
// Returns a *ValidationError describing the first violation, or nil.
func Validate(data []byte) error {
	s := loadSchemas()
	return validateAgainst(s, s.event, "event.json", data, ErrSchema)
}

// ValidateLog checks a candidate v3 log document against the log schema.
func ValidateLog(data []byte) error {
	s := loadSchemas()
	return validateAgainst(s, s.log, "log.json", data, ErrLogSchema)
}

// Parse validates untrusted bytes and decodes them into a typed event.
func Parse(data []byte) (Event, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	return Decode(data)
}

func validateAgainst(s *schemaSet, def cue.Value, filename string, data []byte, code string) error {
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return &ValidationError{
			Message: fmt.Sprintf("malformed JSON: %v", err),
			Code:    ErrMalformedJSON,
		}
	}

	val := s.ctx.BuildExpr(expr)
	if err := val.Err(); err != nil {
		return &ValidationError{
			Message: fmt.Sprintf("building value: %v", err),
			Code:    ErrMalformedJSON,
		}
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return schemaViolation(err, code)
	}
	return nil
}

// schemaViolation converts a CUE validation error into a ValidationError,
// keeping the first failing path as the field.
func schemaViolation(err error, code string) *ValidationError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error(), Code: code}
	}

	first := errs[0]
	return &ValidationError{
		Field:   strings.Join(first.Path(), "."),
		Message: first.Error(),
		Code:    code,
	}
}
