package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := ParseBearer(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestTokenFromContext(t *testing.T) {
	_, ok := TokenFromContext(context.Background())
	assert.False(t, ok)

	token, ok := TokenFromContext(WithToken(context.Background(), "t1"))
	assert.True(t, ok)
	assert.Equal(t, "t1", token)

	md := metadata.Pairs("authorization", "Bearer t2")
	token, ok = TokenFromContext(metadata.NewIncomingContext(context.Background(), md))
	assert.True(t, ok)
	assert.Equal(t, "t2", token)
}
