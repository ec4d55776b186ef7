package pdfgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches a bare identifier wrapped in angle brackets, the only
// form a template token may take. Header columns are allowed looser interiors
// but then simply never match template text.
var tokenPattern = regexp.MustCompile(`<[A-Za-z0-9_]+>`)

// TokenSet is the validated substitution vocabulary of a run: every member
// appears both as a dataset column and as literal text in the template.
type TokenSet map[string]struct{}

// Has reports whether the bracketed token belongs to the set.
func (ts TokenSet) Has(token string) bool {
	_, ok := ts[token]
	return ok
}

// Sorted returns the tokens in lexical order, for stable diagnostics.
func (ts TokenSet) Sorted() []string {
	out := make([]string, 0, len(ts))
	for t := range ts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsTokenColumn reports whether a header column is a candidate token:
// starts with '<', ends with '>', non-empty interior.
func IsTokenColumn(column string) bool {
	return len(column) > 2 && column[0] == '<' && column[len(column)-1] == '>'
}

// ExtractTokens determines the substitution vocabulary from the template's
// text content and the dataset's header columns.
//
// Tokens found in the template with no matching header column are fatal:
// their substitution target is undefined, so no row could render correctly.
// Header token columns the template never uses are reported as warnings only,
// since a template may reasonably omit some columns.
//
// Pure function: neither the template nor the header list is modified.
func ExtractTokens(tpl *Template, headers []string) (TokenSet, []string, error) {
	candidates := make(map[string]struct{})
	for _, col := range headers {
		if IsTokenColumn(col) {
			candidates[col] = struct{}{}
		}
	}

	inTemplate := make(map[string]struct{})
	for _, text := range tpl.Texts() {
		for _, m := range tokenPattern.FindAllString(text, -1) {
			inTemplate[m] = struct{}{}
		}
	}

	var missing []string
	valid := make(TokenSet)
	for token := range inTemplate {
		if _, ok := candidates[token]; ok {
			valid[token] = struct{}{}
		} else {
			missing = append(missing, token)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, fmt.Errorf("%w: no data column for %s",
			ErrValidation, strings.Join(missing, ", "))
	}

	var warnings []string
	for token := range candidates {
		if _, ok := inTemplate[token]; !ok {
			warnings = append(warnings, fmt.Sprintf("column %s is not used by the template", token))
		}
	}
	sort.Strings(warnings)

	return valid, warnings, nil
}
