package normalize

import "testing"

func TestEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  John.DOE@Example.COM  ", "john.doe@example.com"},
		{"olena@ukr.net", "olena@ukr.net"},
		// internationalized addresses lower-case too
		{"Олена@Приклад.Укр", "олена@приклад.укр"},
		{"\tkukhar@i.ua\n", "kukhar@i.ua"},
	}
	for _, c := range cases {
		if got := Email(c.in); got != c.want {
			t.Fatalf("Email(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
