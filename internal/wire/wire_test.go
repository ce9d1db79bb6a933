package wire

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/worldclock/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChange_Validate(t *testing.T) {
	live := Change{
		ID:        "a1b2c3",
		Timezone:  "Europe/Riga",
		Label:     "home",
		Position:  "U",
		UpdatedAt: "2024-05-01T10:20:30Z",
	}

	tests := []struct {
		name   string
		mutate func(*Change)
		ok     bool
	}{
		{name: "valid live row", mutate: func(c *Change) {}, ok: true},
		{name: "empty label is fine", mutate: func(c *Change) { c.Label = "" }, ok: true},
		{name: "id too short", mutate: func(c *Change) { c.ID = "abc" }, ok: false},
		{name: "id too long", mutate: func(c *Change) { c.ID = strings.Repeat("x", 81) }, ok: false},
		{name: "timezone too long", mutate: func(c *Change) { c.Timezone = strings.Repeat("x", 81) }, ok: false},
		{name: "label too long", mutate: func(c *Change) { c.Label = strings.Repeat("x", 81) }, ok: false},
		{name: "non-UTC stamp", mutate: func(c *Change) { c.UpdatedAt = "2024-05-01T10:20:30+02:00" }, ok: false},
		{name: "stamp with millis", mutate: func(c *Change) { c.UpdatedAt = "2024-05-01T10:20:30.123Z" }, ok: false},
		{name: "position outside alphabet", mutate: func(c *Change) { c.Position = "a_b" }, ok: false},
		{name: "missing position is fine", mutate: func(c *Change) { c.Position = "" }, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := live
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorValidation))
			}
		})
	}
}

func TestChange_ValidateTombstone(t *testing.T) {
	ts := Change{ID: "a1b2c3", UpdatedAt: "2024-05-01T10:20:30Z", Tombstone: 1}
	assert.NoError(t, ts.Validate())

	// Payload rules do not apply to tombstones; they carry no payload.
	ts.Label = strings.Repeat("x", 200)
	assert.NoError(t, ts.Validate())

	ts.UpdatedAt = "not-a-stamp"
	assert.Error(t, ts.Validate())
}

func TestChange_TombstoneWireShape(t *testing.T) {
	b, err := json.Marshal(Change{ID: "a1b2c3", UpdatedAt: "2024-05-01T10:20:30Z", Tombstone: 1})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.ElementsMatch(t, []string{"id", "updated_at", "tombstone"}, keys(m))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
