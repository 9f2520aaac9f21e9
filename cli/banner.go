package cli

import (
	"fmt"
	"strings"
)

// PrintBanner draws a single box-drawing frame around a centered title.
// The box widens when the title would not fit the default width.
func PrintBanner(title string) {
	inner := 58
	if len(title)+2 > inner {
		inner = len(title) + 2
	}

	pad := inner - len(title)
	left := pad / 2

	edge := strings.Repeat("═", inner)
	fmt.Printf("╔%s╗\n", edge)
	fmt.Printf("║%s%s%s║\n", strings.Repeat(" ", left), title, strings.Repeat(" ", pad-left))
	fmt.Printf("╚%s╝\n", edge)
}
