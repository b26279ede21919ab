package glossai

import "strings"

// LanguageNames maps locale codes to human-readable names for AI prompts.
var LanguageNames = map[string]string{
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"fr_FR": "French (France)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"ko_KR": "Korean (South Korea)",
	"pt_BR": "Portuguese (Brazil)",
	"ru_RU": "Russian (Russia)",
	"th_TH": "Thai (Thailand)",
	"vi_VN": "Vietnamese (Vietnam)",
	"id_ID": "Indonesian (Indonesia)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"en": "en_US",
	"de": "de_DE",
	"es": "es_ES",
	"fr": "fr_FR",
	"it": "it_IT",
	"ja": "ja_JP",
	"ko": "ko_KR",
	"pt": "pt_BR",
	"ru": "ru_RU",
	"th": "th_TH",
	"vi": "vi_VN",
	"id": "id_ID",
	"zh": "zh_CN",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[langCode]; ok {
		return name
	}
	// Try expanding short code
	if locale, ok := ShortCodeToLocale[langCode]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	return langCode
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// SameLanguage reports whether two locale codes share a base language
// (e.g. "en_US" and "en_GB"). A translator whose source and target
// share a base language has nothing to do.
func SameLanguage(a, b string) bool {
	return baseLang(a) == baseLang(b)
}

// baseLang extracts the base language code (e.g., "en" from "en_US").
func baseLang(lang string) string {
	parts := strings.Split(NormalizeLocale(lang), "_")
	return strings.ToLower(parts[0])
}
