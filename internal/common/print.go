package common

import (
	"fmt"
	"strings"
)

const DefaultWidth = 80

func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

func PrintHeader(title string, width int) {
	PrintSeparator("=", width)
	padding := (width - len(title)) / 2
	if padding < 0 {
		padding = 0
	}
	fmt.Printf("%s%s\n", strings.Repeat(" ", padding), title)
	PrintSeparator("=", width)
}

func PrintFooter(summary string, width int) {
	fmt.Println()
	PrintSeparator("=", width)
	fmt.Println(summary)
	PrintSeparator("=", width)
}

func PrintBoxSeparator(width int) {
	fmt.Printf("├%s\n", strings.Repeat("─", width))
}

func BoxPrefix(isLast bool) string {
	if isLast {
		return "└─"
	}
	return "├─"
}
