package esp

import "strings"

// EncodeLine frames line for the ESP: the payload without any trailing
// newline, then NUL, then newline. A line containing NUL is rejected with
// ErrNulInLine.
func EncodeLine(line string) ([]byte, error) {
	return AppendLine(make([]byte, 0, EncodedLen(line)), line)
}

// AppendLine appends the framed line to dst.
func AppendLine(dst []byte, line string) ([]byte, error) {
	if strings.IndexByte(line, 0x00) >= 0 {
		return dst, ErrNulInLine
	}
	dst = append(dst, strings.TrimSuffix(line, "\n")...)
	return append(dst, 0x00, '\n'), nil
}

// EncodedLen is the length EncodeLine produces for line.
func EncodedLen(line string) int {
	return len(strings.TrimSuffix(line, "\n")) + 2
}
