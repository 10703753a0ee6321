package core

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Disambiguate makes names unique. The first occurrence of a name keeps it;
// later occurrences get "_2", "_3", ... in first-seen order, skipping any
// candidate that is already an input name or was assigned earlier.
func Disambiguate(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}

	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	next := make(map[string]int)
	for i, n := range names {
		if !used[n] {
			used[n] = true
			out[i] = n
			continue
		}
		k := next[n]
		if k == 0 {
			k = 2
		}
		candidate := n + "_" + strconv.Itoa(k)
		for taken[candidate] || used[candidate] {
			k++
			candidate = n + "_" + strconv.Itoa(k)
		}
		next[n] = k + 1
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

var greekNames = map[rune]string{
	'α': "alpha", 'β': "beta", 'γ': "gamma", 'δ': "delta", 'ε': "epsilon",
	'ζ': "zeta", 'η': "eta", 'θ': "theta", 'ι': "iota", 'κ': "kappa",
	'λ': "lambda", 'μ': "mu", 'ν': "nu", 'ξ': "xi", 'ο': "omicron",
	'π': "pi", 'ρ': "rho", 'σ': "sigma", 'ς': "sigma", 'τ': "tau",
	'υ': "upsilon", 'φ': "phi", 'χ': "chi", 'ψ': "psi", 'ω': "omega",
	'Α': "alpha", 'Β': "beta", 'Γ': "gamma", 'Δ': "delta", 'Ε': "epsilon",
	'Ζ': "zeta", 'Η': "eta", 'Θ': "theta", 'Ι': "iota", 'Κ': "kappa",
	'Λ': "lambda", 'Μ': "mu", 'Ν': "nu", 'Ξ': "xi", 'Ο': "omicron",
	'Π': "pi", 'Ρ': "rho", 'Σ': "sigma", 'Τ': "tau", 'Υ': "upsilon",
	'Φ': "phi", 'Χ': "chi", 'Ψ': "psi", 'Ω': "omega",
	'µ': "mu", // MICRO SIGN
	'∆': "delta",
}

var symbolNames = map[rune]string{
	'/':  "_per_",
	'%':  "_pct",
	'@':  "_at_",
	'\'': "_prime",
	'²':  "2",
	'³':  "3",
	'¹':  "1",
	'⁻':  "_neg",
	'°':  "deg",
	'‰':  "_permil",
}

// SanitizeName turns an instrument name into a lowercase identifier made of
// ASCII letters, digits and single underscores:
//
//	ΔCO2      -> delta_co2
//	Fv/Fm     -> fv_per_fm
//	Fan_%     -> fan_pct
//	T@P1_Fmax -> t_at_p1_fmax
//	1-qL      -> x1_ql
//
// A result that would start with a digit is prefixed with "x"; a name with
// nothing left becomes "x".
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(name) {
		if g, ok := greekNames[r]; ok {
			b.WriteString(g)
			b.WriteByte('_')
			continue
		}
		if s, ok := symbolNames[r]; ok {
			b.WriteString(s)
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	// A Caser is stateful, so each call gets its own.
	id := cases.Lower(language.Und).String(collapseUnderscores(b.String()))
	if id == "" {
		return "x"
	}
	if id[0] >= '0' && id[0] <= '9' {
		return "x" + id
	}
	return id
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	prev := false
	for _, r := range s {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}

// ResolveIdentifiers returns one unique identifier per column name.
// With preserveOriginal the names are only disambiguated; otherwise they are
// sanitized first, then disambiguated, since sanitizing can create collisions.
func ResolveIdentifiers(names []string, preserveOriginal bool) []string {
	if preserveOriginal {
		return Disambiguate(names)
	}
	sanitized := make([]string, len(names))
	for i, n := range names {
		sanitized[i] = SanitizeName(n)
	}
	return Disambiguate(sanitized)
}
