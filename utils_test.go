package urirouter

import "testing"

func Test_validatePath(t *testing.T) {
	if err := catchPanic(func() { validatePath("") }); err == nil {
		t.Error("an error was expected with an empty path")
	}

	if err := catchPanic(func() { validatePath("foo") }); err == nil {
		t.Error("an error was expected with an empty path")
	}

	if err := catchPanic(func() { validatePath("/foo") }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func Test_parsePath(t *testing.T) {
	if err := catchPanic(func() { parsePath("/books/{id") }); err == nil {
		t.Error("an error was expected with an unterminated variable")
	}

	if err := catchPanic(func() { parsePath("/books/{id:[0-9}") }); err == nil {
		t.Error("an error was expected with an invalid regex")
	}

	tpl := parsePath("/books/{id}")
	if tpl.String() != "/books/{id}" {
		t.Errorf("parsePath() == %s, want %s", tpl.String(), "/books/{id}")
	}
}

func Test_filesPrefix(t *testing.T) {
	if err := catchPanic(func() { filesPrefix("/static/{filepath}") }); err == nil {
		t.Error("an error was expected without the file path variable")
	}

	tests := []struct {
		path string
		want string
	}{
		{"/{filepath:.*}", ""},
		{"/static/{filepath:.*}", "/static"},
		{"/authors/{author}/files/{filepath:.*}", "/authors/{author}/files"},
	}

	for _, tt := range tests {
		if got := filesPrefix(tt.path); got != tt.want {
			t.Errorf("filesPrefix(%s) == %s, want %s", tt.path, got, tt.want)
		}
	}
}
