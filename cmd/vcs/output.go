package main

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"

	"vcs/internal/diff"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func printSuccess(format string, args ...any) {
	fmt.Println(green(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(blue(fmt.Sprintf(format, args...)))
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, red("Error: "+sentence(err.Error())))
}

// sentence capitalizes the first letter of an error message for display.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func printTreeDiff(result *diff.Result) {
	for _, c := range result.Changes {
		line := fmt.Sprintf("%s %s", c.Type.Symbol(), c.Path)
		switch c.Type {
		case diff.Added:
			fmt.Println(green(line))
		case diff.Deleted:
			fmt.Println(red(line))
		default:
			fmt.Println(yellow(line))
		}
	}
}

func printMessage(message string) {
	for _, line := range strings.Split(message, "\n") {
		fmt.Printf("    %s\n", line)
	}
}
