package language

import "strings"

// Language is one entry of a provider catalog.
type Language struct {
	// Name is the symbolic name, for example "ENGLISH".
	Name string
	// Code is the identifier sent to the provider, for example "en".
	Code string
}

// Catalog is an ordered list of languages. Order matters for Resolve.
type Catalog []Language

// English is the fallback for tokens that match nothing.
var English = Language{Name: "ENGLISH", Code: "en"}

// Resolve matches token case-insensitively against every entry's name and
// code. When several entries match, the last one in catalog order wins.
// Unknown tokens resolve to English instead of failing.
func (c Catalog) Resolve(token string) Language {
	token = strings.TrimSpace(token)

	result := English
	for _, lang := range c {
		if strings.EqualFold(token, lang.Name) || strings.EqualFold(token, lang.Code) {
			result = lang
		}
	}
	return result
}

// Known reports whether token matches at least one entry.
func (c Catalog) Known(token string) bool {
	token = strings.TrimSpace(token)
	for _, lang := range c {
		if strings.EqualFold(token, lang.Name) || strings.EqualFold(token, lang.Code) {
			return true
		}
	}
	return false
}

// Google lists the languages of the Google Translate v2 API.
var Google = Catalog{
	{"AFRIKAANS", "af"},
	{"ALBANIAN", "sq"},
	{"ARABIC", "ar"},
	{"BELARUSIAN", "be"},
	{"BULGARIAN", "bg"},
	{"CATALAN", "ca"},
	{"CHINESE_SIMPLIFIED", "zh-CN"},
	{"CHINESE_TRADITIONAL", "zh-TW"},
	{"CROATIAN", "hr"},
	{"CZECH", "cs"},
	{"DANISH", "da"},
	{"DUTCH", "nl"},
	{"ENGLISH", "en"},
	{"ESTONIAN", "et"},
	{"FILIPINO", "tl"},
	{"FINNISH", "fi"},
	{"FRENCH", "fr"},
	{"GALICIAN", "gl"},
	{"GERMAN", "de"},
	{"GREEK", "el"},
	{"HAITIAN_CREOLE", "ht"},
	{"HEBREW", "iw"},
	{"HINDI", "hi"},
	{"HUNGARIAN", "hu"},
	{"ICELANDIC", "is"},
	{"INDONESIAN", "id"},
	{"IRISH", "ga"},
	{"ITALIAN", "it"},
	{"JAPANESE", "ja"},
	{"LATVIAN", "lv"},
	{"LITHUANIAN", "lt"},
	{"MACEDONIAN", "mk"},
	{"MALAY", "ms"},
	{"MALTESE", "mt"},
	{"NORWEGIAN", "no"},
	{"PERSIAN", "fa"},
	{"POLISH", "pl"},
	{"PORTUGUESE", "pt"},
	{"ROMANIAN", "ro"},
	{"RUSSIAN", "ru"},
	{"SERBIAN", "sr"},
	{"SLOVAK", "sk"},
	{"SLOVENIAN", "sl"},
	{"SPANISH", "es"},
	{"SWAHILI", "sw"},
	{"SWEDISH", "sv"},
	{"THAI", "th"},
	{"TURKISH", "tr"},
	{"UKRAINIAN", "uk"},
	{"VIETNAMESE", "vi"},
	{"WELSH", "cy"},
	{"YIDDISH", "yi"},
}

// Bing lists the languages of the Microsoft Translator V2 API. AUTO_DETECT
// has an empty code, so an empty token resolves to it.
var Bing = Catalog{
	{"AUTO_DETECT", ""},
	{"ARABIC", "ar"},
	{"BULGARIAN", "bg"},
	{"CATALAN", "ca"},
	{"CHINESE_SIMPLIFIED", "zh-CHS"},
	{"CHINESE_TRADITIONAL", "zh-CHT"},
	{"CZECH", "cs"},
	{"DANISH", "da"},
	{"DUTCH", "nl"},
	{"ENGLISH", "en"},
	{"ESTONIAN", "et"},
	{"FINNISH", "fi"},
	{"FRENCH", "fr"},
	{"GERMAN", "de"},
	{"GREEK", "el"},
	{"HAITIAN_CREOLE", "ht"},
	{"HEBREW", "he"},
	{"HINDI", "hi"},
	{"HMONG_DAW", "mww"},
	{"HUNGARIAN", "hu"},
	{"INDONESIAN", "id"},
	{"ITALIAN", "it"},
	{"JAPANESE", "ja"},
	{"KOREAN", "ko"},
	{"LATVIAN", "lv"},
	{"LITHUANIAN", "lt"},
	{"MALAY", "ms"},
	{"NORWEGIAN", "no"},
	{"PERSIAN", "fa"},
	{"POLISH", "pl"},
	{"PORTUGUESE", "pt"},
	{"ROMANIAN", "ro"},
	{"RUSSIAN", "ru"},
	{"SLOVAK", "sk"},
	{"SLOVENIAN", "sl"},
	{"SPANISH", "es"},
	{"SWEDISH", "sv"},
	{"THAI", "th"},
	{"TURKISH", "tr"},
	{"UKRAINIAN", "uk"},
	{"URDU", "ur"},
	{"VIETNAMESE", "vi"},
}
