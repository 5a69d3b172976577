package control

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light4/christina/internal/orchestrator/result"
)

// Field names of the result struct on the wire. They match the panel's JSON.
const (
	fieldOrigin     = "origin"
	fieldTranslated = "translated"
	fieldRunID      = "run_id"
	fieldSource     = "source"
	fieldUpdatedAt  = "updated_at"
	fieldUnchanged  = "unchanged"
)

// ToStruct encodes r for the control service.
func ToStruct(r result.Result, unchanged bool) (*structpb.Struct, error) {
	m := map[string]any{
		fieldOrigin:     r.Origin,
		fieldTranslated: r.Translated,
		fieldRunID:      r.RunID,
		fieldSource:     r.Source,
		fieldUnchanged:  unchanged,
	}
	if !r.UpdatedAt.IsZero() {
		m[fieldUpdatedAt] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes a result sent by ToStruct. Missing fields stay zero.
func FromStruct(s *structpb.Struct) (r result.Result, unchanged bool) {
	f := s.GetFields()
	r.Origin = f[fieldOrigin].GetStringValue()
	r.Translated = f[fieldTranslated].GetStringValue()
	r.RunID = f[fieldRunID].GetStringValue()
	r.Source = f[fieldSource].GetStringValue()
	if ts := f[fieldUpdatedAt].GetStringValue(); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.UpdatedAt = t
		}
	}
	return r, f[fieldUnchanged].GetBoolValue()
}
