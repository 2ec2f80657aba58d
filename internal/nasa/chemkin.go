package nasa

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
)

// Chemkin renders the model as a CHEMKIN NASA-7 thermo entry: four
// fixed-column 80-character lines carrying both coefficient ranges.
// formula is the molecular formula, e.g. "C2H4O2"; at most four distinct
// elements fit the legacy element field.
func (n *NASA) Chemkin(label, formula string) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	elements, err := parseFormula(formula)
	if err != nil {
		return "", err
	}
	if len(elements) > 4 {
		return "", eris.Errorf("nasa: chemkin element field holds 4 elements, formula %q has %d", formula, len(elements))
	}
	if len(label) > 16 {
		label = label[:16]
	}

	var elem strings.Builder
	for _, e := range elements {
		fmt.Fprintf(&elem, "%-2s%3d", e.symbol, e.count)
	}
	for elem.Len() < 20 {
		elem.WriteByte(' ')
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-24s%sG%10.3f%10.3f%8.2f      1\n",
		label, elem.String(), n.Tmin(), n.Tmax(), n.Tmid())

	h := n.High.Coeffs
	l := n.Low.Coeffs
	fmt.Fprintf(&b, "%15.8E%15.8E%15.8E%15.8E%15.8E    2\n", h[0], h[1], h[2], h[3], h[4])
	fmt.Fprintf(&b, "%15.8E%15.8E%15.8E%15.8E%15.8E    3\n", h[5], h[6], l[0], l[1], l[2])
	fmt.Fprintf(&b, "%15.8E%15.8E%15.8E%15.8E%19s4\n", l[3], l[4], l[5], l[6], "")

	return b.String(), nil
}

type element struct {
	symbol string
	count  int
}

// parseFormula splits a Hill-order molecular formula into element counts.
func parseFormula(formula string) ([]element, error) {
	var out []element
	runes := []rune(formula)
	for i := 0; i < len(runes); {
		if !unicode.IsUpper(runes[i]) {
			return nil, eris.Errorf("nasa: malformed formula %q", formula)
		}
		sym := string(runes[i])
		i++
		if i < len(runes) && unicode.IsLower(runes[i]) {
			sym += string(runes[i])
			i++
		}
		count := 0
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			count = count*10 + int(runes[i]-'0')
			i++
		}
		if count == 0 {
			count = 1
		}
		out = append(out, element{symbol: sym, count: count})
	}
	if len(out) == 0 {
		return nil, eris.Errorf("nasa: empty formula")
	}
	return out, nil
}
