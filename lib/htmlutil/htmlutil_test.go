package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{in: "Rathaus Mitte, BVV-Saal", out: "Rathaus Mitte, BVV-Saal"},
		{in: "  Rathaus \n\t Tiergarten ", out: "Rathaus Tiergarten"},
		{in: "Rathaus Neukölln<br/>Raum A 104", out: "Rathaus Neukölln Raum A 104"},
		{in: "<p>Bezirksamt <b>Pankow</b></p>", out: "Bezirksamt Pankow"},
		{in: "Wohnen &amp; Mieten", out: "Wohnen & Mieten"},
		{in: "", out: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.out, Text(test.in), test.in)
	}
}
