package corpus

import (
	"regexp"
	"strings"
)

// FileMeta is the document metadata encoded by corpus filename convention.
type FileMeta struct {
	Title  string
	Number string
	Year   string
}

// metaRule turns an instrument-specific filename pattern into title/number
// templates. The first capture group is the instrument number, the second
// the year.
type metaRule struct {
	re          *regexp.Regexp
	titlePrefix string
	numPrefix   string
}

var metaRules = []metaRule{
	{regexp.MustCompile(`(?i)^ra_(.+?)_(\d{4})$`), "Republic Act No.", "R.A. No."},
	{regexp.MustCompile(`(?i)^act_(.+?)_(\d{4})$`), "Act No.", "Act No."},
	{regexp.MustCompile(`(?i)^bp_(.+?)_(\d{4})$`), "Batas Pambansa Blg.", "B.P. Blg."},
	{regexp.MustCompile(`(?i)^eo_(.+?)_(\d{4})$`), "Executive Order No.", "E.O. No."},
	{regexp.MustCompile(`(?i)^ao_(.+?)_(\d{4})$`), "Administrative Order No.", "A.O. No."},
	{regexp.MustCompile(`(?i)^pd_(.+?)_(\d{4})$`), "Presidential Decree No.", "P.D. No."},
	{regexp.MustCompile(`(?i)^go_(.+?)_(\d{4})$`), "General Order No.", "G.O. No."},
	{regexp.MustCompile(`(?i)^proc_(.+?)_(\d{4})$`), "Presidential Proclamation No.", "Proc. No."},
}

var (
	extRe      = regexp.MustCompile(`(?i)\.html?$`)
	grNameRe   = regexp.MustCompile(`(?i)^G\.?R\.?\s+No\.`)
	grNumberRe = regexp.MustCompile(`(?i)^(G\.?R\.?\s+No\.\s+[\w-]+)`)
	anyYearRe  = regexp.MustCompile(`\b(\d{4})\b`)
	tailYearRe = regexp.MustCompile(`[_-]?(\d{4})(?:[_-]\d+)?$`)
)

// ParseFileMeta derives {title, number, year} from a corpus filename using
// ordered instrument-specific patterns with a generic fallback.
func ParseFileMeta(filename string) FileMeta {
	name := extRe.ReplaceAllString(filename, "")

	// Supreme Court decisions are named by their G.R. number directly.
	if grNameRe.MatchString(name) {
		meta := FileMeta{Title: name, Number: name}
		if m := grNumberRe.FindStringSubmatch(name); m != nil {
			meta.Number = strings.TrimSpace(m[1])
		}
		if m := anyYearRe.FindStringSubmatch(name); m != nil {
			meta.Year = m[1]
		}
		return meta
	}

	for _, rule := range metaRules {
		m := rule.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		num := m[1]
		return FileMeta{
			Title:  rule.titlePrefix + " " + strings.ReplaceAll(num, "_", " "),
			Number: rule.numPrefix + " " + num,
			Year:   m[2],
		}
	}

	// Generic fallback: strip a trailing year, underscores become spaces,
	// title-case each word.
	meta := FileMeta{}
	if m := tailYearRe.FindStringSubmatch(name); m != nil {
		meta.Year = m[1]
	}
	title := tailYearRe.ReplaceAllString(name, "")
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.TrimSpace(titleCase(title))
	if title == "" {
		title = name
	}
	meta.Title = title
	return meta
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
