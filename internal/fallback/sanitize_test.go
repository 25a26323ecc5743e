package fallback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tile-intent-workers/internal/fallback"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"email", "send it to jane.doe+tiles@example.com please", "send it to [EMAIL] please"},
		{"us phone", "call me at 555-123-4567", "call me at [PHONE]"},
		{"international phone", "my number is +44 20 7946 0958", "my number is [PHONE]"},
		{"card", "card 4111 1111 1111 1111 expires soon", "card [CARD] expires soon"},
		{"ssn", "ssn 123-45-6789", "ssn [SSN]"},
		{"order number is kept", "where is order 778812", "where is order 778812"},
		{"sizes are kept", "12x24 matte in 10mm", "12x24 matte in 10mm"},
		{"nothing to scrub", "carrara marble for showers", "carrara marble for showers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fallback.Sanitize(tt.in))
		})
	}
}
