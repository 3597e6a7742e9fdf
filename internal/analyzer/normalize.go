package analyzer

import "strings"

// NormalizeResumeText trims every line and drops lines that start with '#', which PDF
// exports of markdown resumes leave behind and which confuse the prompt section markers.
func NormalizeResumeText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
