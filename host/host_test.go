package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalpart(t *testing.T) {
	tests := []struct {
		userID string
		want   string
	}{
		{userID: "@alice:example.com", want: "alice"},
		{userID: "@alice", want: "alice"},
		{userID: "alice:example.com", want: "alice"},
		{userID: "alice", want: "alice"},
		{userID: "@alice:example.com:8448", want: "alice"},
		{userID: "@Alice:example.com", want: "Alice"},
		{userID: "@", want: ""},
		{userID: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			assert.Equal(t, tt.want, Localpart(tt.userID))
		})
	}
}

func TestUserID(t *testing.T) {
	assert.Equal(t, "@alice:example.com", UserID("alice", "example.com"))
}
