package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	changeColor  = color.New(color.FgYellow)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	titleColor   = color.New(color.Bold)
)

func printLine(w io.Writer, c *color.Color, symbol, format string, args ...any) {
	_, _ = c.Fprintf(w, "%s %s\n", symbol, fmt.Sprintf(format, args...))
}

func printSuccess(w io.Writer, format string, args ...any) {
	printLine(w, successColor, "✔", format, args...)
}

func printChange(w io.Writer, format string, args ...any) {
	printLine(w, changeColor, "✚", format, args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	printLine(w, warnColor, "⚠", format, args...)
}

func printError(w io.Writer, format string, args ...any) {
	printLine(w, errorColor, "✗", format, args...)
}

func printInfo(w io.Writer, format string, args ...any) {
	printLine(w, infoColor, "►", format, args...)
}
