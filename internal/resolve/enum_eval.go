package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"ffigen/internal/cdecl"
	"ffigen/internal/ctype"
	"ffigen/internal/ffierr"
	"ffigen/internal/registry"
	"ffigen/internal/source"
)

// evalEnum evaluates the enumerators of an enum in order. An enumerator
// without a value is the previous value plus one; the first defaults to 0.
func evalEnum(reg *registry.Registry, values []*cdecl.Enumerator) ([]ctype.Enumerator, error) {
	items := make([]ctype.Enumerator, 0, len(values))
	local := make(map[string]int64, len(values))
	lookup := func(name string) (int64, bool) {
		if v, ok := local[name]; ok {
			return v, true
		}
		return reg.LookupConstant(name)
	}
	var next int64
	for _, en := range values {
		v := next
		if en.Value != nil {
			var err error
			v, err = evalExpr(en.Value, lookup)
			if err != nil {
				var fe *ffierr.Error
				if errors.As(err, &fe) && fe.Name == "" {
					fe.Name = en.Name
				}
				return nil, err
			}
		}
		items = append(items, ctype.Enumerator{Name: en.Name, Value: v})
		local[en.Name] = v
		next = v + 1
	}
	return items, nil
}

// evalExpr evaluates a constant expression with wrapping signed 64-bit
// arithmetic.
func evalExpr(e cdecl.Expr, lookup func(string) (int64, bool)) (int64, error) {
	switch x := e.(type) {
	case *cdecl.Constant:
		if x.Kind == cdecl.ConstChar {
			return parseCharLiteral(x)
		}
		return parseIntLiteral(x)
	case *cdecl.ID:
		if lookup != nil {
			if v, ok := lookup(x.Name); ok {
				return v, nil
			}
		}
		return 0, ffierr.EnumEval(x.Sp, "", fmt.Sprintf("undefined identifier %q in constant expression", x.Name))
	case *cdecl.UnaryOp:
		v, err := evalExpr(x.Expr, lookup)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case "-":
			return -v, nil
		case "+":
			return v, nil
		case "~":
			return ^v, nil
		case "!":
			return boolInt(v == 0), nil
		}
		return 0, ffierr.EnumEval(x.Sp, "", fmt.Sprintf("unsupported unary operator %q", x.Op))
	case *cdecl.BinaryOp:
		l, err := evalExpr(x.Left, lookup)
		if err != nil {
			return 0, err
		}
		r, err := evalExpr(x.Right, lookup)
		if err != nil {
			return 0, err
		}
		return binary(x, l, r)
	case nil:
		return 0, ffierr.EnumEval(source.Span{}, "", "missing expression")
	}
	return 0, ffierr.EnumEval(e.Span(), "", fmt.Sprintf("unsupported expression %T", e))
}

func binary(x *cdecl.BinaryOp, l, r int64) (int64, error) {
	switch x.Op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, ffierr.EnumEval(x.Sp, "", "division by zero")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return 0, ffierr.EnumEval(x.Sp, "", "modulo by zero")
		}
		return l % r, nil
	case "<<", ">>":
		n, err := safecast.Conv[uint](r)
		if err != nil {
			return 0, ffierr.EnumEval(x.Sp, "", fmt.Sprintf("negative shift count %d", r))
		}
		if x.Op == "<<" {
			return l << n, nil
		}
		return l >> n, nil
	case "|":
		return l | r, nil
	case "&":
		return l & r, nil
	case "^":
		return l ^ r, nil
	case "==":
		return boolInt(l == r), nil
	case "!=":
		return boolInt(l != r), nil
	case "<":
		return boolInt(l < r), nil
	case ">":
		return boolInt(l > r), nil
	case "<=":
		return boolInt(l <= r), nil
	case ">=":
		return boolInt(l >= r), nil
	case "&&":
		return boolInt(l != 0 && r != 0), nil
	case "||":
		return boolInt(l != 0 || r != 0), nil
	}
	return 0, ffierr.EnumEval(x.Sp, "", fmt.Sprintf("unsupported binary operator %q", x.Op))
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// parseIntLiteral handles decimal, hex, octal and binary literals with any
// combination of u/l suffixes. Values above MaxInt64 wrap.
func parseIntLiteral(c *cdecl.Constant) (int64, error) {
	text := strings.TrimRight(c.Value, "uUlL")
	text = strings.ReplaceAll(text, "'", "")
	base := 10
	switch {
	case strings.HasPrefix(text, "0x"), strings.HasPrefix(text, "0X"):
		base, text = 16, text[2:]
	case strings.HasPrefix(text, "0b"), strings.HasPrefix(text, "0B"):
		base, text = 2, text[2:]
	case len(text) > 1 && text[0] == '0':
		base, text = 8, text[1:]
	}
	u, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return 0, ffierr.New(ffierr.PhaseResolve, ffierr.KindEnumEval).
			Span(c.Sp).
			Detail("invalid integer literal %q", c.Value).
			Cause(err).
			Build()
	}
	return int64(u), nil //nolint:gosec // C literals wrap
}

// parseCharLiteral decodes 'x', L'x', u'x', U'x' and u8'x' with C escapes.
// Plain char literals are sign-extended from a byte, like gcc does.
func parseCharLiteral(c *cdecl.Constant) (int64, error) {
	text := c.Value
	plain := true
	for _, p := range []string{"u8", "L", "u", "U"} {
		if strings.HasPrefix(text, p+"'") {
			text = text[len(p):]
			plain = false
			break
		}
	}
	if len(text) < 3 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return 0, ffierr.EnumEval(c.Sp, "", fmt.Sprintf("malformed character literal %s", c.Value))
	}
	body := text[1 : len(text)-1]
	v, rest, err := decodeChar(body)
	if err != nil || rest != "" {
		if err == nil {
			err = fmt.Errorf("multi-character literal")
		}
		return 0, ffierr.New(ffierr.PhaseResolve, ffierr.KindEnumEval).
			Span(c.Sp).
			Detail("invalid character literal %s", c.Value).
			Cause(err).
			Build()
	}
	if plain && v < 256 {
		return int64(int8(uint8(v))), nil //nolint:gosec // plain char is signed
	}
	return int64(v), nil
}

func decodeChar(s string) (uint32, string, error) {
	if s == "" {
		return 0, "", fmt.Errorf("empty character literal")
	}
	if s[0] != '\\' {
		r, size := utf8.DecodeRuneInString(s)
		return uint32(r), s[size:], nil //nolint:gosec // runes are non-negative
	}
	if len(s) < 2 {
		return 0, "", fmt.Errorf("dangling escape")
	}
	switch s[1] {
	case 'n':
		return '\n', s[2:], nil
	case 't':
		return '\t', s[2:], nil
	case 'r':
		return '\r', s[2:], nil
	case 'a':
		return '\a', s[2:], nil
	case 'b':
		return '\b', s[2:], nil
	case 'f':
		return '\f', s[2:], nil
	case 'v':
		return '\v', s[2:], nil
	case 'e':
		return 0x1b, s[2:], nil
	case '\\', '\'', '"', '?':
		return uint32(s[1]), s[2:], nil
	case 'x':
		i := 2
		for i < len(s) && isHex(s[i]) {
			i++
		}
		if i == 2 {
			return 0, "", fmt.Errorf("\\x without digits")
		}
		v, err := strconv.ParseUint(s[2:i], 16, 32)
		if err != nil {
			return 0, "", err
		}
		return uint32(v), s[i:], nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		i := 1
		for i < len(s) && i < 4 && s[i] >= '0' && s[i] <= '7' {
			i++
		}
		v, err := strconv.ParseUint(s[1:i], 8, 32)
		if err != nil {
			return 0, "", err
		}
		return uint32(v), s[i:], nil
	}
	return 0, "", fmt.Errorf("unknown escape \\%c", s[1])
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
