package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"comoresmarket/pkg/errors"
)

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Appelle-moi au 332 00 00", "3320000"},
		{"trois trois deux", "332"},
		{"dix-sept vingt-et-un", "1721"},
		{"TRENTE et zéro", "300"},
		{"Bonjour, ça va ?", ""},
		{"dixième étage", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDigits(tt.in), tt.in)
	}
}

func TestContainsContactDetails(t *testing.T) {
	tests := []struct {
		name      string
		previous  []string
		candidate string
		blocked   bool
	}{
		{"plain number", nil, "Appelle-moi au 332 00 00", true},
		{"greeting", nil, "Bonjour, ça va ?", false},
		{"split across window", []string{"332"}, "0000", true},
		{"split in previous messages", []string{"332", "0000"}, "ok", true},
		{"spelled out", nil, "trois trois deux zéro zéro zéro zéro", true},
		{"price is short", nil, "Je vous le laisse à 350000", false},
		{"outside window", []string{"332", "a", "b", "c", "d", "e"}, "0000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blocked, ContainsContactDetails(tt.previous, tt.candidate))
		})
	}
}

func TestCheckOutboundMessage(t *testing.T) {
	err := CheckOutboundMessage(nil, "Appelle-moi au 332 00 00")
	assert.True(t, errors.Is(err, "CONTACT_DETAILS_BLOCKED"))

	assert.NoError(t, CheckOutboundMessage(nil, "Bonjour, ça va ?"))
}
