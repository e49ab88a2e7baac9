package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in     string
		expect string
	}{
		{in: "Alice Lee", expect: "Alice Lee"},
		{in: "  Alice Lee ", expect: "Alice Lee"},
		{in: "Alice\t \nLee", expect: "Alice Lee"},
		{in: "Alice   Middle   Lee", expect: "Alice Middle Lee"},
		{in: "", expect: ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, NormalizeName(test.in))
	}
}

func TestClosestName(t *testing.T) {
	candidates := []string{"alee@berkeley.edu", "bchen@berkeley.edu", "cdoe@berkeley.edu"}

	name, similarity := ClosestName("alee@berkely.edu", candidates)
	require.Equal(t, "alee@berkeley.edu", name)
	require.Greater(t, similarity, 0.9)

	name, similarity = ClosestName("anything", nil)
	require.Equal(t, "", name)
	require.Equal(t, float64(0), similarity)
}
