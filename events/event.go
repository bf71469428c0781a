package events

type Event struct {
	Subject  string            `json:"subject"`            // The exact subject name
	Data     interface{}       `json:"data"`               // The actual event data
	Metadata map[string]string `json:"metadata,omitempty"` // Optional metadata like timestamps, IDs, etc.
}

// Encoder round-trips an opaque payload through bytes. The emitter uses it
// to snapshot mutable payloads before handing them to handlers.
type Encoder interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte) (interface{}, error)
}
