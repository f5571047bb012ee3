package code_converter

import "strings"

// SupportedUploadExtensions are the file suffixes accepted by /convert
var SupportedUploadExtensions = []string{".c", ".cpp", ".java", ".js", ".py", ".txt"}

// ValidateCode performs the basic syntax gate before conversion. Only empty
// input is rejected; no per-language parser is wired in.
func ValidateCode(code, language string) bool {
	return strings.TrimSpace(code) != ""
}

// AcceptsUpload reports whether a file name carries a supported extension
func AcceptsUpload(name string) bool {
	for _, ext := range SupportedUploadExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
