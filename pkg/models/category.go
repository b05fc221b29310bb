package models

import "strings"

// Category is the gallery category. The zero value means "not yet known".
type Category int

const (
	CategoryUnknown Category = iota
	CategoryDoujinshi
	CategoryManga
	CategoryArtistCG
	CategoryGameCG
	CategoryImageSet
	CategoryCosplay
	CategoryNonH
	CategoryWestern
	CategoryMisc
	CategoryPrivate
)

var categoryNames = map[Category]string{
	CategoryDoujinshi: "doujinshi",
	CategoryManga:     "manga",
	CategoryArtistCG:  "artistcg",
	CategoryGameCG:    "gamecg",
	CategoryImageSet:  "imageset",
	CategoryCosplay:   "cosplay",
	CategoryNonH:      "non-h",
	CategoryWestern:   "western",
	CategoryMisc:      "misc",
	CategoryPrivate:   "private",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return ""
}

// ParseCategory maps a source's category string to a Category.
// Unrecognized or empty input maps to CategoryUnknown.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "doujinshi":
		return CategoryDoujinshi
	case "manga":
		return CategoryManga
	case "artistcg", "artist cg", "artist cg sets":
		return CategoryArtistCG
	case "gamecg", "game cg", "game cg sets":
		return CategoryGameCG
	case "imageset", "image set", "image sets":
		return CategoryImageSet
	case "cosplay":
		return CategoryCosplay
	case "non-h", "nonh":
		return CategoryNonH
	case "western":
		return CategoryWestern
	case "misc":
		return CategoryMisc
	case "private":
		return CategoryPrivate
	default:
		return CategoryUnknown
	}
}

// Language is the gallery language. The zero value means "not yet known".
type Language int

const (
	LangUnknown Language = iota
	LangJapanese
	LangEnglish
	LangChinese
	LangKorean
	LangSpanish
	LangFrench
	LangGerman
	LangRussian
	LangOther
)

var languageNames = map[Language]string{
	LangJapanese: "japanese",
	LangEnglish:  "english",
	LangChinese:  "chinese",
	LangKorean:   "korean",
	LangSpanish:  "spanish",
	LangFrench:   "french",
	LangGerman:   "german",
	LangRussian:  "russian",
	LangOther:    "other",
}

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return ""
}

// ParseLanguage maps a source's language string to a Language.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "japanese", "ja", "jp":
		return LangJapanese
	case "english", "en":
		return LangEnglish
	case "chinese", "zh":
		return LangChinese
	case "korean", "ko":
		return LangKorean
	case "spanish", "es":
		return LangSpanish
	case "french", "fr":
		return LangFrench
	case "german", "de":
		return LangGerman
	case "russian", "ru":
		return LangRussian
	case "":
		return LangUnknown
	default:
		return LangOther
	}
}
