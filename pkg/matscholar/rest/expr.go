package rest

import "strings"

// ParseWordExpression splits an expression such as
// "thermoelectric - PbTe + LiFePO4" into positive and negative terms.
// Terms are separated by " +" or " -"; the first term is positive.
func ParseWordExpression(expr string) (positive, negative []string) {
	var last strings.Builder
	isPositive := true
	push := func() {
		w := strings.TrimSpace(last.String())
		if isPositive {
			positive = append(positive, w)
		} else {
			negative = append(negative, w)
		}
		last.Reset()
	}

	for i := 0; i < len(expr); i++ {
		if i+1 < len(expr) && expr[i] == ' ' && (expr[i+1] == '+' || expr[i+1] == '-') {
			push()
			isPositive = expr[i+1] == '+'
			i++
			continue
		}
		last.WriteByte(expr[i])
	}
	if strings.TrimSpace(last.String()) != "" {
		push()
	}
	return positive, negative
}
