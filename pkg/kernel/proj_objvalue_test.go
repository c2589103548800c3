package kernel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexID
		wantErr bool
	}{
		{name: "number", input: `42`, want: "42"},
		{name: "string", input: `"a-1"`, want: "a-1"},
		{name: "null", input: `null`, want: ""},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id FlexID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestFlexID_MarshalsAsString(t *testing.T) {
	b, err := json.Marshal(struct {
		ID FlexID `json:"id"`
	}{ID: "7"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7"}`, string(b))
}

func TestEmail_Domain(t *testing.T) {
	assert.Equal(t, "example.com", Email("ana@example.com").Domain())
	assert.Empty(t, Email("nobody").Domain())
}
