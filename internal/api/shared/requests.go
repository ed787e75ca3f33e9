package shared

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// DecodeJSON decodes the request body into the given struct.
// Unknown fields are tolerated; the validation layer decides what counts.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// Normalizer is implemented by request payloads that canonicalize their
// fields (trim whitespace, lower-case emails, round prices) before
// validation runs.
type Normalizer interface {
	Normalize()
}

// QueryParser is implemented by request payloads populated from URL query
// parameters instead of a JSON body. Implementations apply defaults and
// return a *domain.ValidationError for malformed values.
type QueryParser interface {
	ParseQuery(values url.Values) error
}
