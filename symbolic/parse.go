package symbolic

import (
	"fmt"
	"go/scanner"
	"go/token"
	"math/big"
)

// Parse reads an infix expression such as "sqrt(2)*hbar/2", "3*pi/2",
// "exp(-I*alpha)" or "x**2". Both "**" and "^" denote powers and bind
// tighter than unary minus. "I" is the imaginary unit and "pi" the circle
// constant.
func Parse(src string) (Expr, error) {
	p := &parser{}
	fset := token.NewFileSet()
	file := fset.AddFile("expr", fset.Base(), len(src))
	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) { errs.Add(pos, msg) }, 0)
	for {
		pos, tok, lit := s.Scan()
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		p.toks = append(p.toks, lexeme{pos: fset.Position(pos).Offset, tok: tok, lit: lit})
		if tok == token.EOF {
			break
		}
	}
	if errs.Len() > 0 {
		return Expr{}, fmt.Errorf("symbolic: parse %q: %w", src, errs.Err())
	}
	e, err := p.expr()
	if err != nil {
		return Expr{}, fmt.Errorf("symbolic: parse %q: %w", src, err)
	}
	if t := p.peek(); t.tok != token.EOF {
		return Expr{}, fmt.Errorf("symbolic: parse %q: unexpected %s at offset %d", src, t, t.pos)
	}
	return e, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type lexeme struct {
	pos int
	tok token.Token
	lit string
}

func (l lexeme) String() string {
	if l.lit != "" {
		return fmt.Sprintf("%q", l.lit)
	}
	return fmt.Sprintf("%q", l.tok.String())
}

type parser struct {
	toks []lexeme
	i    int
}

func (p *parser) peek() lexeme { return p.toks[p.i] }

func (p *parser) next() lexeme {
	t := p.toks[p.i]
	if t.tok != token.EOF {
		p.i++
	}
	return t
}

// isPow reports whether the next tokens spell "^" or "**".
func (p *parser) isPow() (int, bool) {
	switch p.peek().tok {
	case token.XOR:
		return 1, true
	case token.MUL:
		if p.i+1 < len(p.toks) && p.toks[p.i+1].tok == token.MUL {
			return 2, true
		}
	}
	return 0, false
}

func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return Expr{}, err
	}
	for {
		switch p.peek().tok {
		case token.ADD:
			p.next()
			right, err := p.term()
			if err != nil {
				return Expr{}, err
			}
			left = left.Add(right)
		case token.SUB:
			p.next()
			right, err := p.term()
			if err != nil {
				return Expr{}, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return Expr{}, err
	}
	for {
		if _, pow := p.isPow(); pow {
			return Expr{}, fmt.Errorf("misplaced power at offset %d", p.peek().pos)
		}
		switch p.peek().tok {
		case token.MUL:
			p.next()
			right, err := p.unary()
			if err != nil {
				return Expr{}, err
			}
			left = left.Mul(right)
		case token.QUO:
			p.next()
			right, err := p.unary()
			if err != nil {
				return Expr{}, err
			}
			if right.IsZero() {
				return Expr{}, fmt.Errorf("division by zero")
			}
			left = left.Mul(right.Pow(-1))
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (Expr, error) {
	switch p.peek().tok {
	case token.SUB:
		p.next()
		e, err := p.unary()
		return e.Neg(), err
	case token.ADD:
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return Expr{}, err
	}
	n, ok := p.isPow()
	if !ok {
		return base, nil
	}
	for ; n > 0; n-- {
		p.next()
	}
	exp, err := p.unary()
	if err != nil {
		return Expr{}, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.tok {
	case token.INT, token.FLOAT:
		r, ok := new(big.Rat).SetString(t.lit)
		if !ok {
			return Expr{}, fmt.Errorf("bad number %s", t.lit)
		}
		return Rat(r), nil
	case token.IDENT:
		if p.peek().tok == token.LPAREN {
			p.next()
			args, err := p.args()
			if err != nil {
				return Expr{}, err
			}
			return call(t.lit, args)
		}
		switch t.lit {
		case "I":
			return I(), nil
		case "pi":
			return Pi(), nil
		}
		return S(t.lit), nil
	case token.LPAREN:
		e, err := p.expr()
		if err != nil {
			return Expr{}, err
		}
		if r := p.next(); r.tok != token.RPAREN {
			return Expr{}, fmt.Errorf("expected ) at offset %d, got %s", r.pos, r)
		}
		return e, nil
	case token.EOF:
		return Expr{}, fmt.Errorf("unexpected end of input")
	}
	return Expr{}, fmt.Errorf("unexpected %s at offset %d", t, t.pos)
}

func (p *parser) args() ([]Expr, error) {
	var out []Expr
	if p.peek().tok == token.RPAREN {
		p.next()
		return out, nil
	}
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		switch t := p.next(); t.tok {
		case token.COMMA:
		case token.RPAREN:
			return out, nil
		default:
			return nil, fmt.Errorf("expected , or ) at offset %d, got %s", t.pos, t)
		}
	}
}

func call(name string, args []Expr) (Expr, error) {
	switch name {
	case "Rational":
		if len(args) != 2 {
			return Expr{}, fmt.Errorf("Rational takes 2 arguments")
		}
		if args[1].IsZero() {
			return Expr{}, fmt.Errorf("division by zero")
		}
		return args[0].Mul(args[1].Pow(-1)), nil
	case "pow", "Pow":
		if len(args) != 2 {
			return Expr{}, fmt.Errorf("%s takes 2 arguments", name)
		}
		return PowOf(args[0], args[1]), nil
	case "conjugate":
		if len(args) != 1 {
			return Expr{}, fmt.Errorf("conjugate takes 1 argument")
		}
		return args[0].Conj(), nil
	}
	if len(args) == 0 {
		return Expr{}, fmt.Errorf("%s needs arguments", name)
	}
	return Func(name, args...), nil
}
