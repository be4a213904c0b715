package classify

import (
	"reflect"
	"testing"
)

func TestHeaderValues(t *testing.T) {
	h := Header{
		"X-Priority": {"1"},
		"x-priority": {"5"},
		"X-PRIORITY": {"3"},
		"reply-by":   {"2024-03-18"},
	}
	h.Add("importance", "high")

	tests := []struct {
		key  string
		want []string
	}{
		{key: "X-Priority", want: []string{"1", "3", "5"}},
		{key: "x-priority", want: []string{"1", "3", "5"}},
		{key: "Reply-By", want: []string{"2024-03-18"}},
		{key: "IMPORTANCE", want: []string{"high"}},
		{key: "Expires", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := h.Values(tt.key); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Values(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	if got := h.Get("reply-by"); got != "2024-03-18" {
		t.Errorf("Get(reply-by) = %q", got)
	}
}
