package rpc

import "google.golang.org/protobuf/types/known/structpb"

// Message field names besides the paper ones.
const (
	FieldUserName     = "username"
	FieldPassword     = "password"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldStatus       = "status"
	FieldFormat       = "format"
	FieldTag          = "tag"
	FieldURL          = "url"
	FieldExpiresAt    = "expires_at"
)

// NewMessage builds a Struct from string fields.
func NewMessage(kv map[string]string) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(kv))
	for k, v := range kv {
		fields[k] = structpb.NewStringValue(v)
	}
	return &structpb.Struct{Fields: fields}
}

// String returns the first non-empty string among keys.
func String(s *structpb.Struct, keys ...string) string {
	for _, k := range keys {
		if v := s.GetFields()[k].GetStringValue(); v != "" {
			return v
		}
	}
	return ""
}

// Strings returns the string elements of a list field. A missing field
// gives an empty slice.
func Strings(s *structpb.Struct, key string) []string {
	values := s.GetFields()[key].GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.GetStringValue())
	}
	return out
}

// Has reports whether key is present, even with an empty value.
func Has(s *structpb.Struct, key string) bool {
	_, ok := s.GetFields()[key]
	return ok
}

func stringList(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// StringList converts in for use as a Struct list value.
func StringList(in []string) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: listValues(in)})
}

func listValues(in []string) []*structpb.Value {
	out := make([]*structpb.Value, len(in))
	for i, v := range in {
		out[i] = structpb.NewStringValue(v)
	}
	return out
}
