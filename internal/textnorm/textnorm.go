// Package textnorm canonicalizes job titles and company names so that
// postings scraped from different boards compare cleanly.
package textnorm

import (
	"regexp"
	"sort"
	"strings"
)

var titlePrefixes = []string{"looking for", "hiring", "urgent", "immediate"}

var titleSuffixes = []string{"- remote", "- hybrid", "(remote)", "(hybrid)"}

var companySuffixes = []string{"inc", "inc.", "llc", "ltd", "corp", "corporation", "company", "co."}

type synonymGroup struct {
	canonical string
	pattern   *regexp.Regexp
}

// Group order matters: multi-word families fold before the single-word
// families that share tokens with them.
var titleGroups = buildTitleGroups([]struct {
	canonical string
	variants  []string
}{
	{"software engineer", []string{"software developer", "developer", "programmer", "engineer"}},
	{"data scientist", []string{"data analyst", "ml engineer", "ai engineer"}},
	{"product manager", []string{"pm", "product owner", "product lead"}},
	{"frontend", []string{"front-end", "front end", "ui", "client-side"}},
	{"backend", []string{"back-end", "back end", "server-side", "api"}},
	{"fullstack", []string{"full-stack", "full stack", "full-stack developer"}},
	{"senior", []string{"sr", "lead", "principal"}},
	{"junior", []string{"jr", "entry level", "associate"}},
})

// companyAliases maps legal-entity spellings onto the canonical brand.
var companyAliases = buildCompanyAliases(map[string][]string{
	"google":    {"alphabet", "google llc", "google inc"},
	"meta":      {"facebook", "meta platforms", "facebook inc"},
	"amazon":    {"amazon web services", "aws", "amazon.com"},
	"microsoft": {"msft", "microsoft corporation"},
	"apple":     {"apple inc", "apple computer"},
	"netflix":   {"netflix inc", "netflix.com"},
	"tesla":     {"tesla inc", "tesla motors"},
	"uber":      {"uber technologies", "uber inc"},
	"airbnb":    {"airbnb inc", "airbnb.com"},
})

func buildTitleGroups(defs []struct {
	canonical string
	variants  []string
}) []synonymGroup {
	groups := make([]synonymGroup, 0, len(defs))

	for _, def := range defs {
		// The canonical form is part of the alternation so an already
		// canonical title matches as a whole instead of having one of
		// its words refolded.
		alts := append([]string{def.canonical}, def.variants...)
		sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })

		quoted := make([]string, len(alts))
		for i, alt := range alts {
			quoted[i] = regexp.QuoteMeta(alt)
		}

		groups = append(groups, synonymGroup{
			canonical: def.canonical,
			pattern:   regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
		})
	}

	return groups
}

func buildCompanyAliases(defs map[string][]string) map[string]string {
	aliases := make(map[string]string, len(defs)*3)

	for canonical, variants := range defs {
		aliases[canonical] = canonical
		for _, variant := range variants {
			aliases[variant] = canonical
		}
	}

	return aliases
}

// NormalizeTitle lowercases a job title, strips posting noise and folds
// known synonym families into their canonical token. Empty input stays
// empty; the function never fails.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))

	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(title, prefix) {
			title = strings.TrimSpace(title[len(prefix):])
		}
	}

	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(title, suffix) {
			title = strings.TrimSpace(title[:len(title)-len(suffix)])
		}
	}

	for _, group := range titleGroups {
		title = group.pattern.ReplaceAllString(title, group.canonical)
	}

	return title
}

// NormalizeCompany lowercases a company name, strips corporate suffixes
// and maps known legal-entity spellings onto the canonical brand.
func NormalizeCompany(company string) string {
	company = strings.ToLower(strings.TrimSpace(company))

	for _, suffix := range companySuffixes {
		if strings.HasSuffix(company, suffix) {
			company = strings.TrimSpace(company[:len(company)-len(suffix)])
		}
	}

	if canonical, ok := companyAliases[company]; ok {
		return canonical
	}

	return company
}
