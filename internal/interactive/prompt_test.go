package interactive

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "yes\n", true},
		{"uppercase yes", "Y\n", true},
		{"no", "n\n", false},
		{"no word", "no\n", false},
		{"empty line", "\n", false},
		{"garbage", "maybe\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompterWithIO(strings.NewReader(tt.input), &out)

			got := p.Confirm("Install %s?", "v1.3.0")
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Install v1.3.0?") {
				t.Errorf("prompt output %q missing question", out.String())
			}
		})
	}
}
