// Package normalize cleans free text scraped from search results before it is shipped to the CRM
// Pipeline order
// 1 drop invalid UTF-8
// 2 Unicode NFC
// 3 strip control (Cc) runes and invisible markers (zero width space, word joiner, BOM,
//   soft hyphen, bidi controls); ZWJ and ZWNJ stay since names and emoji depend on them
// 4 fold fullwidth ASCII forms to ASCII
// 5 collapse whitespace runs to one space and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	pstrings "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/strings"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.Predicate(func(r rune) bool {
				// whitespace controls survive until the collapse step
				return unicode.Is(unicode.Cc, r) && !unicode.IsSpace(r)
			})),
			runes.Remove(runes.In(invisible)),
			runes.Map(foldWidth),
		)
	},
}

// invisible lists the format runes that never carry meaning in a name or title
var invisible = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00ad, Hi: 0x00ad, Stride: 1},
		{Lo: 0x200b, Hi: 0x200b, Stride: 1},
		{Lo: 0x200e, Hi: 0x200f, Stride: 1},
		{Lo: 0x202a, Hi: 0x202e, Stride: 1},
		{Lo: 0x2060, Hi: 0x2060, Stride: 1},
		{Lo: 0x2066, Hi: 0x2069, Stride: 1},
		{Lo: 0xfeff, Hi: 0xfeff, Stride: 1},
	},
	LatinOffset: 1,
}

// foldWidth narrows fullwidth ASCII variants and leaves everything else, CJK included, alone
func foldWidth(r rune) rune {
	if r == '\u3000' {
		return ' '
	}
	if r >= '\uff01' && r <= '\uff5e' {
		if n := width.LookupRune(r).Narrow(); n != 0 {
			return n
		}
	}
	return r
}

// Text returns the cleaned form of s
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = s
	}
	return pstrings.CollapseSpace(out)
}
