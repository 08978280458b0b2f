package pageglot

import "strings"

// Normalize canonicalizes a language tag to its primary subtag:
// lower-cased, "_" treated as "-", everything after the first separator
// dropped. "en-US", "en_GB" and "EN" all normalize to "en". The empty
// string normalizes to "".
func Normalize(tag string) string {
	if tag == "" {
		return ""
	}
	tag = strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		return tag[:i]
	}
	return tag
}

// SameLanguage reports whether two tags share a primary subtag. This is
// the language equality used everywhere in the core.
func SameLanguage(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// LanguageNames maps primary subtags to human-readable names for the
// popup and panel surfaces.
var LanguageNames = map[string]string{
	"ar": "Arabic",
	"bg": "Bulgarian",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// GetLanguageName returns the display name for a tag, falling back to
// the tag itself.
func GetLanguageName(tag string) string {
	if name, ok := LanguageNames[Normalize(tag)]; ok {
		return name
	}
	return tag
}

// rtlLanguages contains primary subtags written right to left.
var rtlLanguages = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
	"ps": true,
	"sd": true,
	"ug": true,
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(tag string) string {
	if rtlLanguages[Normalize(tag)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL reports whether the language is written right to left.
func IsRTL(tag string) bool {
	return GetDirection(tag) == "rtl"
}
