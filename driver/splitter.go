package driver

import "strings"

// countStatements counts the non-blank statements in a piece of SQL text,
// treating semicolons inside quoted literals, quoted identifiers, and
// comments as ordinary characters. The caller does not pre-classify
// statement kind, so this count alone decides batch execution. No SQL
// parsing happens here; the scan only tracks quoting state.
func countStatements(text string) int {
	count := 0
	segment := false

	i := 0
	for i < len(text) {
		c := text[i]

		switch c {
		case '\'', '"', '`':
			segment = true
			i = skipQuoted(text, i, c)
			continue
		case '[':
			// SQL Server bracket identifiers have no escape; they end at the
			// first closing bracket.
			segment = true
			if end := strings.IndexByte(text[i+1:], ']'); end >= 0 {
				i += end + 2
			} else {
				i = len(text)
			}
			continue
		case '-':
			if i+1 < len(text) && text[i+1] == '-' {
				i = skipLineComment(text, i)
				continue
			}
		case '/':
			if i+1 < len(text) && text[i+1] == '*' {
				i = skipBlockComment(text, i)
				continue
			}
		case ';':
			if segment {
				count++
				segment = false
			}
			i++
			continue
		}

		if !isSpace(c) {
			segment = true
		}
		i++
	}

	if segment {
		count++
	}

	return count
}

// skipQuoted advances past a quoted region opened at start. A doubled quote
// character is the in-literal escape for all three quote styles.
func skipQuoted(text string, start int, quote byte) int {
	i := start + 1
	for i < len(text) {
		if text[i] == quote {
			if i+1 < len(text) && text[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func skipLineComment(text string, start int) int {
	if end := strings.IndexByte(text[start:], '\n'); end >= 0 {
		return start + end + 1
	}
	return len(text)
}

func skipBlockComment(text string, start int) int {
	if end := strings.Index(text[start+2:], "*/"); end >= 0 {
		return start + end + 4
	}
	return len(text)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
