package keywords

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lowercase", in: "URGENT Request", want: "urgent request"},
		{name: "diacritics", in: "Acción requerida mañana", want: "accion requerida manana"},
		{name: "whitespace runs", in: "  please\t\treview \n now  ", want: "please review now"},
		{name: "miércoles", in: "MIÉRCOLES", want: "miercoles"},
		{name: "punctuation kept", in: "Due: 8/3/2024!", want: "due: 8/3/2024!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
