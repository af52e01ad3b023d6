package esp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/espclient/internal/testutil/testlog"
)

func TestEncodeLine(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   string
		want string
	}{
		{in: "Foo", want: "Foo\x00\n"},
		{in: "Foo\n", want: "Foo\x00\n"},
		{in: "", want: "\x00\n"},
		{in: "\n", want: "\x00\n"},
		{in: "a\nb", want: "a\nb\x00\n"},
		{in: "two\n\n", want: "two\n\x00\n"},
		{in: "héllo", want: "héllo\x00\n"},
	}
	for _, tc := range cases {
		got, err := EncodeLine(tc.in)
		if err != nil {
			t.Fatalf("EncodeLine(%q): %v", tc.in, err)
		}
		if !bytes.Equal(got, []byte(tc.want)) {
			t.Fatalf("EncodeLine(%q) got=%q want=%q", tc.in, got, tc.want)
		}
		if len(got) != EncodedLen(tc.in) {
			t.Fatalf("EncodedLen(%q)=%d, encoded=%d", tc.in, EncodedLen(tc.in), len(got))
		}
	}
}

func TestEncodeLineRejectsNul(t *testing.T) {
	testlog.Start(t)
	if _, err := EncodeLine("bad\x00line"); !errors.Is(err, ErrNulInLine) {
		t.Fatalf("expected ErrNulInLine, got %v", err)
	}
}

func TestAppendLineReusesDst(t *testing.T) {
	testlog.Start(t)
	dst, err := AppendLine([]byte("a\x00\n"), "b")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if string(dst) != "a\x00\nb\x00\n" {
		t.Fatalf("unexpected output: %q", dst)
	}
	dst, err = AppendLine(dst, "\x00")
	if !errors.Is(err, ErrNulInLine) || string(dst) != "a\x00\nb\x00\n" {
		t.Fatalf("rejected line must leave dst untouched, got=%q err=%v", dst, err)
	}
}
