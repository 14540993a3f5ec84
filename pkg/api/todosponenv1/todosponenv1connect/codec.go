// Package todosponenv1connect wires the todosponen.v1 messages to Connect
// handlers and clients.
package todosponenv1connect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec marshals the plain Go messages with encoding/json. It registers
// under the "json" name so Connect JSON clients and curl work unchanged.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON is the codec option every handler and client of this package uses.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

// withJSON prepends the JSON codec so callers can still override it.
func withJSON(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

func withJSONClient(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSON()}, opts...)
}
