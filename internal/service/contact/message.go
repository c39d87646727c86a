package contact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Wire and storage names of the known fields.
const (
	FieldID           = "_id"
	FieldFullName     = "fullName"
	FieldEmail        = "email"
	FieldMobile       = "mobile"
	FieldProjectTitle = "projectTitle"
	FieldDescription  = "description"
	FieldCreatedAt    = "createdAt"
)

// reserved keys are server-owned; a client cannot smuggle them in as extras.
var reserved = map[string]bool{
	FieldID:        true,
	"id":           true,
	FieldCreatedAt: true,
	"__v":          true,
}

// Message is one contact-form submission: a fixed set of optional known
// fields plus whatever else the form sent, kept in Extra.
type Message struct {
	ID           string
	FullName     string
	Email        string
	Mobile       string
	ProjectTitle string
	Description  string
	CreatedAt    time.Time

	Extra map[string]any
}

// IsReserved reports whether key is owned by the server.
func IsReserved(key string) bool {
	return reserved[key]
}

// IsKnown reports whether key maps to a typed Message field.
func IsKnown(key string) bool {
	switch key {
	case FieldID, FieldFullName, FieldEmail, FieldMobile, FieldProjectTitle, FieldDescription, FieldCreatedAt:
		return true
	}
	return false
}

// MarshalJSON flattens Extra next to the known fields.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+7)
	for k, v := range m.Extra {
		if IsKnown(k) || IsReserved(k) {
			continue
		}
		out[k] = v
	}

	out[FieldID] = m.ID
	putString(out, FieldFullName, m.FullName)
	putString(out, FieldEmail, m.Email)
	putString(out, FieldMobile, m.Mobile)
	putString(out, FieldProjectTitle, m.ProjectTitle)
	putString(out, FieldDescription, m.Description)
	if !m.CreatedAt.IsZero() {
		out[FieldCreatedAt] = m.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	return json.Marshal(out)
}

func putString(out map[string]any, key, v string) {
	if v != "" {
		out[key] = v
	}
}

// UnmarshalJSON reads a submission. Known fields take strings, null, or a
// scalar cast to string. Server-owned keys are dropped and everything else
// lands in Extra.
func (m *Message) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return fmt.Errorf("contact: message must be a JSON object")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{}
	for key, val := range raw {
		switch key {
		case FieldFullName:
			if err := decodeString(key, val, &m.FullName); err != nil {
				return err
			}
		case FieldEmail:
			if err := decodeString(key, val, &m.Email); err != nil {
				return err
			}
		case FieldMobile:
			if err := decodeString(key, val, &m.Mobile); err != nil {
				return err
			}
		case FieldProjectTitle:
			if err := decodeString(key, val, &m.ProjectTitle); err != nil {
				return err
			}
		case FieldDescription:
			if err := decodeString(key, val, &m.Description); err != nil {
				return err
			}
		default:
			if IsReserved(key) {
				continue
			}
			var v any
			if err := json.Unmarshal(val, &v); err != nil {
				return err
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[key] = v
		}
	}
	return nil
}

// decodeString reads a known field. Numbers and booleans are accepted and
// kept in their string form ("mobile": 9876543210 stores "9876543210");
// objects and arrays are rejected.
func decodeString(key string, val json.RawMessage, dst *string) error {
	val = bytes.TrimSpace(val)
	if len(val) == 0 {
		return fmt.Errorf("contact: field %q is empty", key)
	}

	switch c := val[0]; {
	case bytes.Equal(val, []byte("null")):
		return nil
	case c == '"':
		if err := json.Unmarshal(val, dst); err != nil {
			return fmt.Errorf("contact: field %q: %w", key, err)
		}
		return nil
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(val, &b); err != nil {
			return fmt.Errorf("contact: field %q: %w", key, err)
		}
		*dst = strconv.FormatBool(b)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(val, &n); err != nil {
			return fmt.Errorf("contact: field %q: %w", key, err)
		}
		*dst = formatNumber(n)
		return nil
	}
	return fmt.Errorf("contact: field %q must be a string", key)
}

// formatNumber renders n the way a JavaScript String() cast would, so 7.0
// becomes "7" and 1e21 stays in exponent form.
func formatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return n.String()
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
