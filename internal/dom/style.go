package dom

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/parser"
)

// NormalizeStyle parses an inline declaration block and renders it back
// in canonical "prop: value;" form. An empty block is valid.
func NormalizeStyle(inline string) (string, error) {
	inline = strings.TrimSpace(inline)
	if inline == "" {
		return "", nil
	}
	decls, err := parser.ParseDeclarations(inline)
	if err != nil {
		return "", fmt.Errorf("marker style: %w", err)
	}
	if len(decls) == 0 {
		return "", fmt.Errorf("marker style: no declarations in %q", inline)
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		val := strings.TrimSpace(d.Value)
		if prop == "" || val == "" {
			return "", fmt.Errorf("marker style: empty declaration in %q", inline)
		}
		if d.Important {
			val += " !important"
		}
		parts = append(parts, prop+": "+val+";")
	}
	return strings.Join(parts, " "), nil
}
