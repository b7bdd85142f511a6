package service

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

type span struct {
	start, end int // byte offsets of the whole token, "@" included
	name       string
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

// mentionSpans finds "@name" tokens. A name is the longest run of letters,
// digits, '_' and '-' after the '@'; an '@' glued to a preceding name rune
// (an e-mail address) does not start a mention.
func mentionSpans(text string) []span {
	var spans []span
	for i := 0; i < len(text); {
		at := strings.IndexByte(text[i:], '@')
		if at < 0 {
			break
		}
		at += i
		i = at + 1

		if at > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:at])
			if isNameRune(prev) {
				continue
			}
		}
		end := at + 1
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !isNameRune(r) {
				break
			}
			end += size
		}
		if end == at+1 {
			continue
		}
		spans = append(spans, span{start: at, end: end, name: text[at+1 : end]})
		i = end
	}
	return spans
}

// maxNameRunes bounds the candidate prefixes taken from one mention run.
const maxNameRunes = 64

// namePrefixes lists the prefixes of run that end on a rune boundary,
// shortest first.
func namePrefixes(run string) []string {
	var out []string
	n := 0
	for i, r := range run {
		if n++; n > maxNameRunes {
			break
		}
		out = append(out, run[:i+utf8.RuneLen(r)])
	}
	return out
}

// mentions reports whether text mentions name, either alone or with other
// text glued after it.
func mentions(text, name string) bool {
	if name == "" {
		return false
	}
	for _, sp := range mentionSpans(text) {
		if strings.HasPrefix(sp.name, name) {
			return true
		}
	}
	return false
}

// MentionedNames lists the distinct name runs following an '@' in text, in
// order of first appearance. Runs are not checked against the directory.
func MentionedNames(text string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, sp := range mentionSpans(text) {
		if _, ok := seen[sp.name]; ok {
			continue
		}
		seen[sp.name] = struct{}{}
		names = append(names, sp.name)
	}
	return names
}

// ResolveMentions links every mention of an existing user to the profile
// page. Every prefix of a run is a candidate name; all candidates are looked
// up in one query and the longest existing one wins, so "@bob你好" links bob
// and "@bobby" prefers bobby over bob. On lookup failure the text is
// returned unchanged.
func (s *ContentService) ResolveMentions(ctx context.Context, text string) string {
	spans := mentionSpans(text)
	if len(spans) == 0 {
		return text
	}

	seen := make(map[string]struct{})
	var candidates []string
	for _, sp := range spans {
		for _, p := range namePrefixes(sp.name) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			candidates = append(candidates, p)
		}
	}

	existing, err := s.users.FindExistingNames(ctx, candidates)
	if err != nil {
		s.log.Warn("resolve mentions", "err", err)
		return text
	}
	known := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		known[n] = struct{}{}
	}

	var b strings.Builder
	last := 0
	for _, sp := range spans {
		prefixes := namePrefixes(sp.name)
		name := ""
		for i := len(prefixes) - 1; i >= 0; i-- {
			if _, ok := known[prefixes[i]]; ok {
				name = prefixes[i]
				break
			}
		}
		if name == "" {
			continue
		}
		b.WriteString(text[last:sp.start])
		b.WriteString("<a href='")
		b.WriteString(s.servePath)
		b.WriteString("/member/")
		b.WriteString(name)
		b.WriteString("'>")
		b.WriteString(name)
		b.WriteString("</a>")
		last = sp.start + 1 + len(name)
	}
	b.WriteString(text[last:])
	return b.String()
}
