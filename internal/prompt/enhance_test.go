package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnhance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain transcript gets the full treatment",
			in:   "a red sneaker on a table",
			want: "A red sneaker on a table, professional product photography, studio lighting, clean background.",
		},
		{
			name: "empty stays empty",
			in:   "",
			want: "",
		},
		{
			name: "keyword present skips the qualifier",
			in:   "commercial shot of a watch",
			want: "Commercial shot of a watch.",
		},
		{
			name: "keyword match is case-insensitive",
			in:   "PROFESSIONAL headshot of a chef",
			want: "PROFESSIONAL headshot of a chef.",
		},
		{
			name: "existing exclamation point preserved",
			in:   "studio lighting on a guitar!",
			want: "Studio lighting on a guitar!",
		},
		{
			name: "existing question mark preserved",
			in:   "high quality render of a mug?",
			want: "High quality render of a mug?",
		},
		{
			name: "only the first rune is uppercased",
			in:   "a RED sneaker with WHITE laces, professional photography.",
			want: "A RED sneaker with WHITE laces, professional photography.",
		},
		{
			name: "non-ascii first rune",
			in:   "éclair on a marble counter",
			want: "Éclair on a marble counter, professional product photography, studio lighting, clean background.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Enhance(tt.in))
		})
	}
}

func TestEnhanceIdempotent(t *testing.T) {
	once := Enhance("a red sneaker on a table")
	twice := Enhance(once)
	assert.Equal(t, once, twice, "re-enhancing must not append a second qualifier")
}
