package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"   __                                      _    ", "#34d399"},
	{"  / _| ___  _ __ _ __ _____      _____  _ __| | __", "#2dd4bf"},
	{" | |_ / _ \\| '__| '_ ` _ \\ \\ /\\ / / _ \\| '__| |/ /", "#22d3ee"},
	{" |  _| (_) | |  | | | | | \\ V  V / (_) | |  |   < ", "#38bdf8"},
	{" |_|  \\___/|_|  |_| |_| |_|\\_/\\_/ \\___/|_|  |_|\\_\\", "#60a5fa"},
}

// PrintBanner writes the formwork banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  form designer "+version).Faint())
	fmt.Fprintln(w)
}
