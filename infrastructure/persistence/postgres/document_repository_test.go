package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm/bookworm/domain/entity"
)

func TestEncodeBodyDropsColumnFields(t *testing.T) {
	body, err := encodeBody(entity.Document{
		entity.FieldID:        "abc",
		entity.FieldCreatedAt: time.Now(),
		"title":               "Dune",
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, map[string]interface{}{"title": "Dune"}, decoded)
}

func TestDecodeDocument(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))

	doc, err := decodeDocument("id-1", []byte(`{"title":"Dune","pages":412}`), created)
	require.NoError(t, err)

	assert.Equal(t, "id-1", doc.ID())
	assert.Equal(t, "Dune", doc["title"])
	assert.Equal(t, float64(412), doc["pages"])
	assert.Equal(t, created.UTC(), doc[entity.FieldCreatedAt])
}

func TestDecodeDocumentRejectsBadBody(t *testing.T) {
	_, err := decodeDocument("id-1", []byte(`{`), time.Now())
	assert.Error(t, err)
}
