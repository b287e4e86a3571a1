package nlu

import "strings"

// Language identifies the active conversation language as a BCP 47 tag.
type Language string

// English is the default conversation language.
const English Language = "en-US"

// Locale returns the primary language subtag ("en" for "en-US").
func (l Language) Locale() string {
	s := string(l)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		return s[:i]
	}
	return s
}
