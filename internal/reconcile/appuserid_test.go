package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppUserID(t *testing.T) {
	tests := []struct {
		in      string
		owner   string
		record  string
		wantErr bool
	}{
		{in: "u1_r1", owner: "u1", record: "r1"},
		{in: "a_b_123", owner: "a_b", record: "123"},
		{in: "__x", owner: "_", record: "x"},
		{in: "nounderscore", wantErr: true},
		{in: "_r1", wantErr: true},
		{in: "u1_", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, record, err := ParseAppUserID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedAppUserID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.record, record)
		})
	}
}

func TestAppUserIDRoundTrip(t *testing.T) {
	owners := []string{"u1", "a_b", "firebase_uid_with_many_parts", "x__y"}
	records := []string{"123", "5f0c6d0e-8f5e-4f55-9a57-3b9d0b3f1e2a"}

	for _, o := range owners {
		for _, r := range records {
			gotOwner, gotRecord, err := ParseAppUserID(ComposeAppUserID(o, r))
			require.NoError(t, err)
			assert.Equal(t, o, gotOwner)
			assert.Equal(t, r, gotRecord)
		}
	}
	assert.Equal(t, "a_b_123", ComposeAppUserID("a_b", "123"))
}
