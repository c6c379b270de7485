package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// printer writes user-facing output, coloured when useColors is set.
type printer struct {
	out       io.Writer
	useColors bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, useColors: !color.NoColor}
}

func (p *printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) Success(format string, args ...any) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

func (p *printer) Warn(format string, args ...any) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[WARN] "+format+"\n", args...)
}

func (p *printer) Error(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[ERROR] "+format+"\n", args...)
}

func (p *printer) Header(title string) {
	if p.useColors {
		color.New(color.Bold).Fprintf(p.out, "\n%s\n", title)
	} else {
		fmt.Fprintf(p.out, "\n%s\n", title)
	}
	fmt.Fprintln(p.out, strings.Repeat("-", len(title)))
}

// Badge renders a short status marker.
func (p *printer) Badge(ok bool, label string) string {
	if !p.useColors {
		return "[" + label + "]"
	}
	if ok {
		return color.GreenString(label)
	}
	return color.YellowString(label)
}
