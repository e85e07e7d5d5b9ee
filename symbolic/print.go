package symbolic

import (
	"fmt"
	"strconv"
	"strings"
)

// String prints e in plain infix: products with "*", powers with "^",
// and rational coefficients as trailing denominators ("sqrt(2)*hbar/2").
func (e Expr) String() string {
	if len(e.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range e.terms {
		s := t.String()
		if i > 0 {
			if strings.HasPrefix(s, "-") {
				sb.WriteString(" - ")
				s = s[1:]
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func powString(key string, p int) string {
	if p == 1 {
		return key
	}
	return key + "^" + strconv.Itoa(p)
}

func (t term) String() string {
	var num, den []string
	for _, f := range t.mono.factors {
		switch {
		case f.pow > 0:
			num = append(num, powString(f.a.key(), f.pow))
		case f.pow < 0:
			den = append(den, powString(f.a.key(), -f.pow))
		}
	}
	neg := false
	if us := t.coeff.units(); len(us) == 1 {
		u := us[0]
		neg = u.neg
		num = append(u.numerator(plainSqrt, "I"), num...)
		if u.q.Cmp(bigOne) != 0 {
			den = append([]string{u.q.String()}, den...)
		}
	} else if len(t.mono.factors) == 0 {
		return t.coeff.String()
	} else {
		num = append([]string{"(" + t.coeff.String() + ")"}, num...)
	}
	s := "1"
	if len(num) > 0 {
		s = strings.Join(num, "*")
	}
	switch len(den) {
	case 0:
	case 1:
		s += "/" + den[0]
	default:
		s += "/(" + strings.Join(den, "*") + ")"
	}
	if neg {
		s = "-" + s
	}
	return s
}

// LaTeX renders e for display.
func (e Expr) LaTeX() string {
	if len(e.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range e.terms {
		s := t.LaTeX()
		neg := strings.HasPrefix(s, "-")
		if neg {
			s = s[1:]
		}
		switch {
		case i == 0 && neg:
			sb.WriteString("- ")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func latexPow(a atom, p int) string {
	if p == 1 {
		return a.latex()
	}
	return fmt.Sprintf("%s^{%d}", a.latex(), p)
}

func (t term) LaTeX() string {
	var num, den []string
	for _, f := range t.mono.factors {
		switch {
		case f.pow > 0:
			num = append(num, latexPow(f.a, f.pow))
		case f.pow < 0:
			den = append(den, latexPow(f.a, -f.pow))
		}
	}
	neg := false
	if us := t.coeff.units(); len(us) == 1 {
		u := us[0]
		neg = u.neg
		num = append(u.numerator(latexSqrt, "i"), num...)
		if u.q.Cmp(bigOne) != 0 {
			den = append([]string{u.q.String()}, den...)
		}
	} else if len(t.mono.factors) == 0 {
		return t.coeff.LaTeX()
	} else {
		num = append([]string{`\left(` + t.coeff.LaTeX() + `\right)`}, num...)
	}
	s := "1"
	if len(num) > 0 {
		s = strings.Join(num, " ")
	}
	if len(den) > 0 {
		s = fmt.Sprintf(`\frac{%s}{%s}`, s, strings.Join(den, " "))
	}
	if neg {
		s = "-" + s
	}
	return s
}
