// Package jsonschema validates documents against json schemas.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/launchrctl/installbuild/internal/installbuild"
)

var compiled sync.Map // map[string]*jsonschema.Schema

// Compile parses and compiles a schema document, results are cached by id.
func Compile(id string, schema []byte) (*jsonschema.Schema, error) {
	if sch, ok := compiled.Load(id); ok {
		return sch.(*jsonschema.Schema), nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", id, err)
	}
	c := jsonschema.NewCompiler()
	if err = c.AddResource(id, doc); err != nil {
		return nil, err
	}
	c.AssertFormat()
	sch, err := c.Compile(id)
	if err != nil {
		return nil, err
	}
	compiled.Store(id, sch)
	return sch, nil
}

// Validate checks if input complies with the schema.
// The input is converted to a json document first, so any value
// serializable by [encoding/json] is accepted.
func Validate(id string, schema []byte, input any) error {
	sch, err := Compile(id, schema)
	if err != nil {
		return err
	}
	b, err := json.Marshal(input)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return err
	}

	err = sch.Validate(inst)
	if err == nil {
		return nil
	}
	if errv, ok := err.(*jsonschema.ValidationError); ok {
		return newKeyErrors(errv)
	}
	return err
}

// KeyError is a violation of the schema by a single key of the document.
type KeyError struct {
	// Key is a dotted key path, e.g. "output.ext". It is empty for the document itself.
	Key string
	Msg string
}

// Error implements error interface.
func (err KeyError) Error() string {
	if err.Key == "" {
		return err.Msg
	}
	return err.Key + ": " + err.Msg
}

// KeyErrors is a list of key violations sorted by key.
type KeyErrors []KeyError

// Error implements error interface.
func (errs KeyErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("config validation errors:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Keys returns keys having violations, each key once.
func (errs KeyErrors) Keys() []string {
	keys := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(keys) == 0 || keys[len(keys)-1] != e.Key {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func newKeyErrors(err *jsonschema.ValidationError) KeyErrors {
	var errs KeyErrors
	collectKeyErrors(err, &errs)
	slices.SortStableFunc(errs, func(a, b KeyError) int {
		return strings.Compare(a.Key, b.Key)
	})
	// The same violation may be reached by several schema branches.
	return slices.Compact(errs)
}

func collectKeyErrors(err *jsonschema.ValidationError, errs *KeyErrors) {
	if len(err.Causes) > 0 {
		for _, c := range err.Causes {
			collectKeyErrors(c, errs)
		}
		return
	}
	if req, ok := err.ErrorKind.(*kind.Required); ok {
		// Report a missing property by its own key.
		for _, p := range req.Missing {
			*errs = append(*errs, KeyError{Key: keyPath(append(slices.Clone(err.InstanceLocation), p)), Msg: "is required"})
		}
		return
	}
	*errs = append(*errs, KeyError{
		Key: keyPath(err.InstanceLocation),
		Msg: err.ErrorKind.LocalizedString(installbuild.DefaultTextPrinter),
	})
}

func keyPath(loc []string) string {
	return strings.Join(loc, ".")
}
