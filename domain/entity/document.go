package entity

import (
	"time"
)

const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
)

// Document is a schemaless record of a catalog collection (books, genres,
// tutorials). Field shapes belong to the client.
type Document map[string]interface{}

func (d Document) ID() string {
	if id, ok := d[FieldID].(string); ok {
		return id
	}
	return ""
}

// Stamp returns a copy without any client supplied identifier and with the
// creation time set.
func (d Document) Stamp(now time.Time) Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		if k == FieldID {
			continue
		}
		out[k] = v
	}
	out[FieldCreatedAt] = now.UTC()
	return out
}

// Patch strips fields that an update must never overwrite.
func (d Document) Patch() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		out[k] = v
	}
	return out
}
