package model

import (
	"errors"
	"fmt"

	"github.com/lukefarrell/snapfeed/pkg/gateway"
)

// ErrInvalidDocument reports a document that fails its collection schema.
var ErrInvalidDocument = errors.New("invalid document")

func invalid(collection, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, collection, reason)
}

func str(doc gateway.Document, key string) string {
	value, _ := doc[key].(string)
	return value
}

// strList decodes a list attribute of plain strings.
func strList(doc gateway.Document, key string) []string {
	raw, ok := doc[key].([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// refID decodes a relationship attribute, which the service returns either
// as a bare document ID or as an expanded document.
func refID(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		return gateway.Document(v).ID()
	}
	return ""
}

// refIDs decodes a to-many relationship attribute into document IDs.
func refIDs(doc gateway.Document, key string) []string {
	raw, ok := doc[key].([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		if id := refID(item); id != "" {
			result = append(result, id)
		}
	}
	return result
}

func subDocuments(doc gateway.Document, key string) []gateway.Document {
	raw, ok := doc[key].([]any)
	if !ok {
		return nil
	}
	result := make([]gateway.Document, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			result = append(result, gateway.Document(m))
		}
	}
	return result
}
