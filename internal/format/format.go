// Package format は表示用の整形ヘルパーを提供する。
// 通貨・日付・割合・氏名イニシャル・国旗絵文字の整形を行う。
package format

import (
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "Jan 2, 2006"
)

// Currency は金額をISO通貨コードに応じた通貨記号付きで整形する。
// 不明な通貨コードの場合はコードをそのまま前置する。
func Currency(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		p := message.NewPrinter(language.English)
		return strings.ToUpper(code) + " " + p.Sprintf("%.2f", amount)
	}
	p := message.NewPrinter(language.English)
	return p.Sprint(currency.NarrowSymbol(unit.Amount(amount)))
}

// ISODate は日付をyyyy-MM-dd形式で整形する。永続化とAPI応答で使う。
func ISODate(t time.Time) string {
	return t.Format(isoDateLayout)
}

// ParseISODate はyyyy-MM-dd形式の文字列を日付にパースする。
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(isoDateLayout, s)
}

// DisplayDate は日付を画面表示用（例: Jan 2, 2006）に整形する。
func DisplayDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

// DateRange は期間を「開始 - 終了」形式で整形する。
// 終了日がnilの場合は「開始 - 継続中」となる。
func DateRange(start time.Time, end *time.Time) string {
	if end == nil {
		return DisplayDate(start) + " - 継続中"
	}
	return DisplayDate(start) + " - " + DisplayDate(*end)
}

// Percentage は永続化された割合（0〜1）を表示用の「75%」形式に整形する。
func Percentage(fraction float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d%%", int(fraction*100+0.5))
}

// Initials は氏名からイニシャルを生成する。
// 空白区切りの先頭2語の頭文字を大文字で連結する（例: "John Doe" → "JD"）。
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	for i, f := range fields {
		if i >= 2 {
			break
		}
		r := []rune(f)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// CountryFlag はISO 3166-1 alpha-2の国コードを国旗絵文字に変換する。
// 2文字の英字以外は空文字を返す。
func CountryFlag(code string) string {
	if len(code) != 2 {
		return ""
	}

	code = strings.ToUpper(code)
	var b strings.Builder
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return ""
		}
		// 地域指示記号: 'A' → U+1F1E6
		b.WriteRune(rune(0x1F1E6 + (c - 'A')))
	}
	return b.String()
}
