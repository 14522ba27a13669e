package rolegate

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/samber/lo"
)

var ruleRegexpWrapper = regexp.MustCompile(`^regexp\((.+)\)$`)

// MatchPath パスルールが実際のパスにマッチするかどうか
//
// regexp(...)形式のルールは中身を正規表現として評価します。
// それ以外のルールは正規化したパス同士の完全一致で比較します。
// コンパイルできないパターンはマッチしないものとして扱います。
func MatchPath(rule, path string) bool {
	if m := ruleRegexpWrapper.FindStringSubmatch(rule); m != nil {
		re, err := compileRulePattern(m[1])
		if err != nil {
			return false
		}
		ok, err := re.MatchString(path)
		return err == nil && ok
	}
	return normalizePath(rule) == normalizePath(path)
}

// compileRulePattern デリミタ付き正規表現パターンをコンパイルします
//
// ルール設定のパターンは /.../flags 形式で書かれます。デリミタが無い場合は
// パターン全体をそのままコンパイルします。ルールには後読み・先読みを使う
// 設定が存在するため、regexp2を使用します。
func compileRulePattern(pattern string) (*regexp2.Regexp, error) {
	body, flags := pattern, ""
	if len(pattern) >= 2 {
		d := pattern[0]
		if isPatternDelimiter(d) {
			if end := strings.LastIndexByte(pattern[1:], d); end >= 0 {
				body = pattern[1 : end+1]
				flags = pattern[end+2:]
			}
		}
	}
	opts := regexp2.None
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		}
	}
	return regexp2.Compile(body, opts)
}

func isPatternDelimiter(b byte) bool {
	switch b {
	case '/', '#', '~', '%', '!':
		return true
	}
	return false
}

// normalizePath パスを比較用の正規形に変換します
//
// スキームとホストを取り除き、前後のスラッシュを落とし、小文字に揃えます。
func normalizePath(p string) string {
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
		if j := strings.IndexByte(p, '/'); j >= 0 {
			p = p[j+1:]
		} else {
			p = ""
		}
	}
	return strings.ToLower(strings.Trim(p, "/"))
}

// CheckContext ルールが現在のコンテキストで適用されるべきかどうか
//
// コンテキスト指定の無いルールは常に適用されます。
// strictの場合はスタック最内のコンテキストのみを、そうでない場合は
// スタック全体との共通部分を見ます。
func CheckContext(rule Rule, stack []string, strict bool) bool {
	if len(rule.Context) == 0 {
		return true
	}
	if strict {
		if len(stack) == 0 {
			return false
		}
		return slices.Contains(rule.Context, stack[len(stack)-1])
	}
	return lo.Some(stack, rule.Context)
}
