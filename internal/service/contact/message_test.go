package contact

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_UnmarshalJSON(t *testing.T) {
	var m Message
	err := json.Unmarshal([]byte(`{
		"fullName": "Ada Lovelace",
		"email": "ada@example.com",
		"mobile": null,
		"projectTitle": "Engine",
		"budget": 5000,
		"tags": ["a", "b"],
		"_id": "spoofed",
		"id": "spoofed",
		"createdAt": "1999-01-01T00:00:00Z",
		"__v": 3
	}`), &m)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", m.FullName)
	assert.Equal(t, "ada@example.com", m.Email)
	assert.Empty(t, m.Mobile)
	assert.Equal(t, "Engine", m.ProjectTitle)
	assert.Empty(t, m.ID)
	assert.True(t, m.CreatedAt.IsZero())
	assert.Equal(t, map[string]any{"budget": float64(5000), "tags": []any{"a", "b"}}, m.Extra)
}

func TestMessage_UnmarshalJSON_Rejects(t *testing.T) {
	tests := map[string]string{
		"array":            `[1,2]`,
		"string":           `"hello"`,
		"object email":     `{"email": {"a": 1}}`,
		"array mobile":     `{"mobile": [1]}`,
		"malformed object": `{"projectTitle": `,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			var m Message
			assert.Error(t, json.Unmarshal([]byte(body), &m))
		})
	}
}

func TestMessage_UnmarshalJSON_CastsScalars(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Message
	}{
		{"number title", `{"projectTitle": 7}`, Message{ProjectTitle: "7"}},
		{"numeric mobile", `{"projectTitle": "Site", "mobile": 9876543210}`, Message{ProjectTitle: "Site", Mobile: "9876543210"}},
		{"float", `{"description": 7.50}`, Message{Description: "7.5"}},
		{"negative", `{"fullName": -3}`, Message{FullName: "-3"}},
		{"huge", `{"description": 1e21}`, Message{Description: "1e+21"}},
		{"bool", `{"email": true, "fullName": false}`, Message{Email: "true", FullName: "false"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Message
			require.NoError(t, json.Unmarshal([]byte(tt.body), &m))
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestMessage_MarshalJSON(t *testing.T) {
	m := Message{
		ID:           "665f1c2e9b1e8a3d4c5b6a79",
		FullName:     "Ada",
		ProjectTitle: "Engine",
		CreatedAt:    time.Date(2026, 2, 3, 4, 5, 6, 7_000_000, time.UTC),
		Extra: map[string]any{
			"budget":    "5k",
			"createdAt": "shadow",
			"fullName":  "shadow",
		},
	}

	b, err := json.Marshal(m)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, map[string]any{
		"_id":          "665f1c2e9b1e8a3d4c5b6a79",
		"fullName":     "Ada",
		"projectTitle": "Engine",
		"createdAt":    "2026-02-03T04:05:06.007Z",
		"budget":       "5k",
	}, got)
}

func TestIsKnownAndReserved(t *testing.T) {
	assert.True(t, IsKnown(FieldProjectTitle))
	assert.False(t, IsKnown("budget"))
	assert.True(t, IsReserved("__v"))
	assert.True(t, IsReserved(FieldID))
	assert.False(t, IsReserved(FieldEmail))
}
