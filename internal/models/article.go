package models

import "encoding/json"

// SearchEnvelope is the only view of an upstream search body the service
// decodes. Everything else, including every article field, stays in the raw
// body and is returned verbatim.
type SearchEnvelope struct {
	Articles json.RawMessage `json:"articles"`
}
