package code_converter

import "strings"

const indentUnit = "    "

// FormatConvertedCode normalises model output for the target language.
// Brace languages are re-indented by brace depth with blank lines dropped;
// C and C++ output without a main function is wrapped into one. Output for
// other languages is only trimmed, since their indentation carries meaning.
func FormatConvertedCode(code, targetLang string) string {
	switch targetLang {
	// Java is not wrapped: a C-style main outside a class does not compile.
	case "c", "cpp":
		if !strings.Contains(strings.ToLower(code), "int main") {
			return wrapInMain(code)
		}
		return strings.TrimSpace(reindent(code))
	case "java", "js":
		return strings.TrimSpace(reindent(code))
	default:
		return strings.TrimSpace(code)
	}
}

func reindent(code string) string {
	var out []string
	depth := 0
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "}") && depth > 0 {
			depth--
		}
		out = append(out, strings.Repeat(indentUnit, depth)+trimmed)

		switch {
		case strings.Contains(trimmed, "{"):
			depth++
		case strings.HasPrefix(trimmed, "int main"):
			// brace on the next line
			depth++
		}
	}
	return strings.Join(out, "\n")
}

func wrapInMain(code string) string {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n")
	b.WriteString("int main() {\n")
	for _, stmt := range strings.Split(strings.ReplaceAll(code, ";", ";\n"), "\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		b.WriteString(indentUnit + stmt + "\n")
	}
	b.WriteString(indentUnit + "return 0;\n")
	b.WriteString("}")
	return b.String()
}
