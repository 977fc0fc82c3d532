package scriptdata

import "testing"

func TestArray(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		marker string
		want   string
		found  bool
	}{
		{
			name:   "simple",
			html:   `<html><script>var all_rating = [{"code":"A"}];</script></html>`,
			marker: "all_rating",
			want:   `[{"code":"A"}]`,
			found:  true,
		},
		{
			name:   "marker in second script",
			html:   `<script>var other = 1;</script><script>var all_rating = [1,2];</script>`,
			marker: "all_rating",
			want:   `[1,2]`,
			found:  true,
		},
		{
			name: "nested arrays bounded by semicolon",
			html: `<script>var all_rating = [[1,2],[3,4]];
var next = 5;</script>`,
			marker: "all_rating",
			want:   `[[1,2],[3,4]]`,
			found:  true,
		},
		{
			name:   "multiline literal",
			html:   "<script>var all_rating = [\n {\"rank\": \"10\"}\n];</script>",
			marker: "all_rating",
			want:   "[\n {\"rank\": \"10\"}\n]",
			found:  true,
		},
		{
			name:   "marker missing",
			html:   `<script>var something_else = [1];</script>`,
			marker: "all_rating",
			found:  false,
		},
		{
			name:   "marker outside script",
			html:   `<div>all_rating = [1];</div>`,
			marker: "all_rating",
			found:  false,
		},
		{
			name:   "no array after marker",
			html:   `<script>var all_rating = null;</script>`,
			marker: "all_rating",
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Array([]byte(tt.html), tt.marker)
			if found != tt.found {
				t.Fatalf("Array found = %v, want %v", found, tt.found)
			}
			if found && string(got) != tt.want {
				t.Errorf("Array = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain array", `[{"code":"X","rank":"3"}]`, false},
		{"empty array", `[]`, false},
		{"nested", `[[1,2],{"a":[3]}]`, false},
		{"function call", `[alert(1)]`, true},
		{"identifier", `[undefined]`, true},
		{"trailing expression", `[1] && steal()`, true},
		{"trailing value", `[1] [2]`, true},
		{"unterminated", `[{"code":`, true},
		{"comment", `[1] // note`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			err := DecodeStrict([]byte(tt.in), &v)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeStrict(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
