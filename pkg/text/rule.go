package text

import (
	"regexp"
	"strings"
)

// ContextPlaceholder is substituted with the resolved path-context fragment
// in the replacement of a rule that names a context.
const ContextPlaceholder = "{{context}}"

// 🛡️ Guard reports whether the effect of a rule is already present in content
type Guard interface {
	Applied(replacement, content string) bool
}

// GuardFunc adapts a plain function to Guard
type GuardFunc func(replacement, content string) bool

// Applied implements Guard
func (f GuardFunc) Applied(replacement, content string) bool {
	return f(replacement, content)
}

// ReplacementPresent skips a rule when its replacement text already appears
// anywhere in the content. This is deliberately coarse: a coincidental match
// elsewhere in the file also suppresses the rule.
var ReplacementPresent Guard = GuardFunc(func(replacement, content string) bool {
	return replacement != "" && strings.Contains(content, replacement)
})

// ContainsGuard skips a rule when content already contains marker
func ContainsGuard(marker string) Guard {
	return GuardFunc(func(_, content string) bool {
		return marker != "" && strings.Contains(content, marker)
	})
}

// 📝 RuleSpec is the uncompiled form of a rule, as read from configuration
type RuleSpec struct {
	// Name labels the rule in logs and reports
	Name string
	// Pattern is a Go regular expression, or a verbatim string when Literal is set
	Pattern string
	// Alternatives are tried in order after Pattern; the first one that matches is used
	Alternatives []string
	// Replacement may reference groups as $1, ${1}, ${name} or \1
	Replacement string
	// Literal disables regular expression syntax in Pattern and expansion in Replacement
	Literal bool
	// Guard is optional
	Guard Guard
	// Context names the path-context table that fills {{context}}
	Context string
}

// 🔧 Rule is a compiled RuleSpec
type Rule struct {
	name        string
	patterns    []*regexp.Regexp
	replacement string
	literal     bool
	guard       Guard
	context     string
}

// Name returns the rule label
func (r *Rule) Name() string {
	return r.name
}

// Context returns the path-context table name, empty when the rule has none
func (r *Rule) Context() string {
	return r.context
}

// template returns the replacement with the context fragment filled in, once
// in the form handed to the regexp engine and once as plain text for guards.
func (r *Rule) template(fragment string) (expand string, plain string) {
	if r.context == "" {
		return r.replacement, r.replacement
	}
	plain = strings.ReplaceAll(r.replacement, ContextPlaceholder, fragment)
	if r.literal {
		return plain, plain
	}
	return strings.ReplaceAll(r.replacement, ContextPlaceholder, strings.ReplaceAll(fragment, "$", "$$")), plain
}

// apply substitutes every non-overlapping match of the first matching pattern.
// It returns the new content and the number of matches.
func (r *Rule) apply(content, fragment string) (string, int) {
	expand, _ := r.template(fragment)
	for _, re := range r.patterns {
		n := len(re.FindAllStringIndex(content, -1))
		if n == 0 {
			continue
		}
		if r.literal {
			return re.ReplaceAllLiteralString(content, expand), n
		}
		return re.ReplaceAllString(content, expand), n
	}
	return content, 0
}

// normalizeTemplate rewrites \N and \g<name> group references into the
// ${N} form understood by regexp.Expand and turns the \n, \t and \r escapes
// into their characters. A doubled backslash is kept as one literal
// backslash; any other escape is left as written.
func normalizeTemplate(tmpl string) string {
	if !strings.Contains(tmpl, `\`) {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl) + 8)
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '\\' || i+1 >= len(tmpl) {
			b.WriteByte(c)
			continue
		}

		next := tmpl[i+1]
		switch {
		case next == '\\':
			b.WriteByte('\\')
			i++
		case next == 'n':
			b.WriteByte('\n')
			i++
		case next == 't':
			b.WriteByte('\t')
			i++
		case next == 'r':
			b.WriteByte('\r')
			i++
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(tmpl) && tmpl[j] >= '0' && tmpl[j] <= '9' {
				j++
			}
			b.WriteString("${" + tmpl[i+1:j] + "}")
			i = j - 1
		case next == 'g' && i+2 < len(tmpl) && tmpl[i+2] == '<':
			end := strings.IndexByte(tmpl[i+3:], '>')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString("${" + tmpl[i+3:i+3+end] + "}")
			i = i + 3 + end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// CollapseRepeats builds a fix-up that folds a run of the same token,
// separated by spaces or tabs, into a single occurrence. Repeats on different
// lines are left alone. The token must stand on a whitespace, quote or text
// boundary on both sides.
func CollapseRepeats(token string) RuleSpec {
	q := regexp.QuoteMeta(token)
	boundary := "[\\s\"'`]"
	return RuleSpec{
		Name:        "collapse " + token,
		Pattern:     "(^|" + boundary + ")" + q + "(?:[ \\t]+" + q + ")+(" + boundary + "|$)",
		Replacement: "${1}" + strings.ReplaceAll(token, "$", "$$") + "${2}",
	}
}
