package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCustomFields_RoundTrip(t *testing.T) {
	in := CustomFields{Fields: []CustomField{
		{ID: "cf-1", Name: "Shelf", Type: FieldTypeTextSingle, Value: "B2"},
		{ID: "cf-2", Name: "Signed", Type: FieldTypeBoolean, Value: "true"},
	}}

	out := DecodeCustomFields(in.Encode())

	assert.Equal(t, in, out)
}

func TestDecodeCustomFields_CorruptPayloadIsEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "{not json", `{"fields": 12}`} {
		out := DecodeCustomFields(raw)
		require.NotNil(t, out.Fields, "payload %q", raw)
		assert.Equal(t, 0, out.Len())
	}
}

func TestDecodeCustomFields_UnknownTypeResets(t *testing.T) {
	out := DecodeCustomFields(`{"fields":[{"id":"a","name":"Mood","type":"EMOJI","value":"x"}]}`)

	require.Equal(t, 1, out.Len())
	assert.Equal(t, FieldTypeUnknown, out.Fields[0].Type)
	assert.Equal(t, "x", out.Fields[0].Value)
}

func TestCustomFields_Get(t *testing.T) {
	c := CustomFields{Fields: []CustomField{{Name: "Shelf", Value: "B2"}}}

	f, ok := c.Get("shelf")
	assert.True(t, ok)
	assert.Equal(t, "B2", f.Value)

	_, ok = c.Get("Room")
	assert.False(t, ok)
}

func TestCustomFields_EncodeNil(t *testing.T) {
	assert.JSONEq(t, `{"fields":[]}`, CustomFields{}.Encode())
}
