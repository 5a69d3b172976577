package ocr

import "strings"

// dropped lists the characters tesseract emits around Japanese subtitles
// that are never part of the line: spaces, newlines, backticks and corner
// brackets.
var dropped = strings.NewReplacer(" ", "", "\n", "", "`", "", "「", "", "」", "")

// Clean normalizes recognized text. Besides removing the dropped characters
// it cuts a single trailing character that follows a final 。, which is
// almost always a misread speck after the full stop. A trailing 。 is never
// cut, so Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	s := []rune(dropped.Replace(text))
	if n := len(s); n > 3 && s[n-2] == '。' && s[n-1] != '。' {
		s = s[:n-1]
	}
	return string(s)
}
