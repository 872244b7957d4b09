// Package redact masks personal data in log lines of the form
// "name=value;email=value;".
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultRedaction replaces masked values.
const DefaultRedaction = "***"

// Filter replaces the value of every field=value pair in message whose
// field is listed in fields. Values end at separator or end of message.
func Filter(fields []string, redaction, message, separator string) string {
	re := compile(fields, separator)
	if re == nil {
		return message
	}
	return re.ReplaceAllString(message, "${1}="+escapeRepl(redaction))
}

// Logf wraps a printf-style logger so formatted lines are filtered before
// reaching next. A nil next yields nil.
func Logf(next func(format string, args ...any), separator string, fields ...string) func(format string, args ...any) {
	if next == nil {
		return nil
	}
	re := compile(fields, separator)
	if re == nil {
		return next
	}
	return func(format string, args ...any) {
		line := fmt.Sprintf(format, args...)
		next("%s", re.ReplaceAllString(line, "${1}="+escapeRepl(DefaultRedaction)))
	}
}

func compile(fields []string, separator string) *regexp.Regexp {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, regexp.QuoteMeta(f))
		}
	}
	if len(names) == 0 {
		return nil
	}
	value := `.*`
	if separator != "" {
		value = `[^` + regexp.QuoteMeta(separator) + `]*`
	}
	return regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)=` + value)
}

func escapeRepl(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
