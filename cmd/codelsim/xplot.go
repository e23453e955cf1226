// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import (
	"bufio"
	"fmt"
	"os"
	"text/template"
)

// xplot colors, by index.
const (
	colorWhite = iota
	colorGreen
	colorRed
	colorBlue
	colorYellow
	colorPurple
	colorOrange
	colorMagenta
)

const xplotHeader = `{{.X.Type}} {{.Y.Type}}
title
{{.Title}}
{{if .X.Label -}}
xlabel
{{.X.Label}}
{{end -}}
{{if .Y.Label -}}
ylabel
{{.Y.Label}}
{{end -}}
{{if .X.Units -}}
xunits
{{.X.Units}}
{{end -}}
{{if .Y.Units -}}
yunits
{{.Y.Units}}
{{end -}}
{{if not .NonzeroAxis -}}
invisible 0 0
{{end -}}
`

type Axis struct {
	Type  string
	Label string
	Units string
}

// Xplot writes a plot file for the xplot program.  Decimation, if nonzero,
// drops Dot points closer in time than the given interval; PlotX points are
// never decimated.
type Xplot struct {
	Title       string
	X           Axis
	Y           Axis
	NonzeroAxis bool
	Decimation  Clock
	file        *os.File
	writer      *bufio.Writer
	prior       Clock
	started     bool
}

func (p *Xplot) Open(name string) (err error) {
	if p.X.Type == "" {
		p.X.Type = "double"
	}
	if p.Y.Type == "" {
		p.Y.Type = "double"
	}
	var t *template.Template
	if t, err = template.New("XplotHeader").Parse(xplotHeader); err != nil {
		return
	}
	if p.file, err = os.Create(name); err != nil {
		return
	}
	p.writer = bufio.NewWriter(p.file)
	err = t.Execute(p.writer, p)
	return
}

func (p *Xplot) Dot(x Clock, y any, color int) {
	if p.decimate(x) {
		return
	}
	fmt.Fprintf(p.writer, "dot %s %s %d\n", x, y, color)
}

func (p *Xplot) PlotX(x Clock, y any, color int) {
	fmt.Fprintf(p.writer, "x %s %s %d\n", x, y, color)
}

// decimate returns true if a Dot at time x is dropped.
func (p *Xplot) decimate(x Clock) bool {
	if p.Decimation == 0 {
		return false
	}
	if p.started && x-p.prior < p.Decimation {
		return true
	}
	p.prior = x
	p.started = true
	return false
}

func (p *Xplot) Close() error {
	fmt.Fprintf(p.writer, "go\n")
	p.writer.Flush()
	return p.file.Close()
}
