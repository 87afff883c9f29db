// Package changespec is the JSON boundary for model.ChangeSpec: decode an
// inbound request body, validate it against the schema rules in
// model.ValidateChangeSpec, and encode a ChangeSpec or DTEResult back out.
package changespec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/emenda-labs/warden/core/model"
)

// Decode reads a JSON-encoded ChangeSpec from r and validates it. A
// malformed body or a schema violation both return model.ErrInvalidChangeSpec
// wrapped with the underlying detail.
func Decode(r io.Reader) (model.ChangeSpec, error) {
	var cs model.ChangeSpec
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cs); err != nil {
		return model.ChangeSpec{}, fmt.Errorf("%w: %v", model.ErrInvalidChangeSpec, err)
	}
	if err := model.ValidateChangeSpec(cs); err != nil {
		return model.ChangeSpec{}, err
	}
	return cs, nil
}

// Encode writes v as JSON to w.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
