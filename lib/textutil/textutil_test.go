package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAthleteKey(t *testing.T) {
	cases := []struct {
		name   string
		expect string
	}{
		{"DUPONT Marie", "dupont_marie"},
		{"LE GALL Anne-Sophie", "le_gall_anne_sophie"},
		{"N'DIAYE Awa", "n_diaye_awa"},
		{"MÜLLER Eva", "m_ller_eva"},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, AthleteKey(test.name))
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	require.Equal(t, "a b c", NormalizeWhitespace("  a\t b \n c "))
}
