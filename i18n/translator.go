package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "got" or "member").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {name} placeholders filled from data; unknown placeholders are dropped.
type dictTranslator struct{ lang string }

var catalogue = map[string]map[string]string{
	"en": {
		"invalid_type":     "invalid type: expected {expected}, got {got}",
		"empty_inference":  "cannot infer a type from an empty list",
		"required":         "mandatory member {member} missing",
		"unknown_key":      "undefined member {member}",
		"null_not_allowed": "null values are not allowed",
		"duplicate_key":    "duplicate member {member}",
		"member_not_found": "member {member} not found",
		"out_of_range":     "index {index} out of range",
		"not_found":        "not found: {target}",
		"transport":        "transfer failed: {status}",
		"parse_error":      "parse error",
		"truncated":        "truncated",
	},
	"ja": {
		"invalid_type":     "型が不正です: {expected} が必要ですが {got} です",
		"empty_inference":  "空のリストから型を推論できません",
		"required":         "必須メンバー {member} がありません",
		"unknown_key":      "未定義のメンバー {member} です",
		"null_not_allowed": "null は許可されていません",
		"duplicate_key":    "メンバー {member} が重複しています",
		"member_not_found": "メンバー {member} が見つかりません",
		"out_of_range":     "インデックス {index} は範囲外です",
		"not_found":        "見つかりません: {target}",
		"transport":        "転送に失敗しました: {status}",
		"parse_error":      "解析エラー",
		"truncated":        "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalogue[t.lang][code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	var b strings.Builder
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			break
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:i])
		b.WriteString(data[tmpl[i+1:i+j]])
		tmpl = tmpl[i+j+1:]
	}
	return b.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
