package api

import (
	"encoding/json"
)

// Codec carries the service's plain Go messages as JSON. It is registered under the name
// "json", replacing connect's protojson codec for this service.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
