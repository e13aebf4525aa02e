package policy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the minimum number of characters in a strong password.
const MinLength = 8

// StrengthSpecials are the characters that satisfy the special criterion.
const StrengthSpecials = `!@#$%^&*(),.?":{}|<>`

// Criterion names one strength requirement.
type Criterion string

const (
	CriterionSimilarity Criterion = "similarity"
	CriterionLength     Criterion = "length"
	CriterionUppercase  Criterion = "uppercase"
	CriterionLowercase  Criterion = "lowercase"
	CriterionDigit      Criterion = "digit"
	CriterionSpecial    Criterion = "special"
)

// Describe returns the user-facing wording for a failed criterion.
func (c Criterion) Describe() string {
	switch c {
	case CriterionSimilarity:
		return "Password is too similar to username"
	case CriterionLength:
		return "at least 8 characters"
	case CriterionUppercase:
		return "an uppercase letter"
	case CriterionLowercase:
		return "a lowercase letter"
	case CriterionDigit:
		return "a number"
	case CriterionSpecial:
		return "a special character (!@#$%^& etc.)"
	}
	return string(c)
}

// Evaluation is the result of Evaluate. Missing lists the failed criteria in
// a stable order, similarity first.
type Evaluation struct {
	Strong  bool
	Missing []Criterion
}

// Feedback renders the evaluation as a one-line message.
func (e Evaluation) Feedback() string {
	if e.Strong {
		return "Strong password"
	}
	parts := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		parts[i] = c.Describe()
	}
	return "Weak password - Missing or issue: " + strings.Join(parts, ", ")
}

// Has reports whether c is among the failed criteria.
func (e Evaluation) Has(c Criterion) bool {
	for _, m := range e.Missing {
		if m == c {
			return true
		}
	}
	return false
}

// StructurallyStrong reports whether only the similarity criterion failed,
// if anything.
func (e Evaluation) StructurallyStrong() bool {
	for _, m := range e.Missing {
		if m != CriterionSimilarity {
			return false
		}
	}
	return true
}

// Evaluate checks password against every criterion. identity may be empty.
func Evaluate(password, identity string) Evaluation {
	var missing []Criterion

	if TooSimilar(password, identity) {
		missing = append(missing, CriterionSimilarity)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(StrengthSpecials, r):
			special = true
		}
	}

	if utf8.RuneCountInString(password) < MinLength {
		missing = append(missing, CriterionLength)
	}
	if !upper {
		missing = append(missing, CriterionUppercase)
	}
	if !lower {
		missing = append(missing, CriterionLowercase)
	}
	if !digit {
		missing = append(missing, CriterionDigit)
	}
	if !special {
		missing = append(missing, CriterionSpecial)
	}

	return Evaluation{Strong: len(missing) == 0, Missing: missing}
}
