package service

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces", in: "Acme Inc", want: "acme-inc"},
		{name: "punctuation dropped", in: "Acme, Inc.", want: "acme-inc"},
		{name: "accents folded", in: "Café Crème", want: "cafe-creme"},
		{name: "hyphen runs collapse", in: "  Foo -- Bar  ", want: "foo-bar"},
		{name: "underscores kept inside", in: "__foo_bar__", want: "foo_bar"},
		{name: "non latin removed", in: "東京", want: ""},
		{name: "symbols only", in: "!!!", want: ""},
		{name: "digits", in: "Support 24/7", want: "support-247"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
