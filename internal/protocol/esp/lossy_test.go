package esp

import (
	"testing"

	"github.com/danmuck/espclient/internal/testutil/testlog"
)

func TestLossyTextPlaceholderPerSubpart(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "plain", want: "plain"},
		{raw: "\xe2\x82\xac", want: "€"},
		{raw: "�", want: "�"},
		{raw: "ok\xff\xfe!\xe2\x82", want: "ok��!�"},
		{raw: "\xf0\x9f\x98", want: "�"},
		{raw: "\xf0\x9f\x98x", want: "�x"},
		{raw: "a\xe2\x28\xa1", want: "a�(�"},
		{raw: "\xc0\xaf", want: "��"},
		{raw: "\xed\xa0\x80", want: "���"},
		{raw: "\xe0\x80", want: "��"},
		{raw: "\xf4\x90\x80\x80", want: "����"},
	}
	for _, tc := range cases {
		if got := lossyText([]byte(tc.raw)); got != tc.want {
			t.Fatalf("lossyText(%q) got=%q want=%q", tc.raw, got, tc.want)
		}
	}
}
