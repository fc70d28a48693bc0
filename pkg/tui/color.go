// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"os"

	"github.com/fatih/color"
)

const (
	ColorRed    = color.FgRed
	ColorGreen  = color.FgGreen
	ColorYellow = color.FgYellow
	ColorDim    = color.FgHiBlack
	ColorBold   = color.Bold
)

type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer that is enabled only when enabled is set,
// NO_COLOR is unset and TERM names a capable terminal.
func NewColorizer(enabled bool) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

func (c Colorizer) Wrap(attr color.Attribute, text string) string {
	if !c.Enabled {
		return text
	}
	p := color.New(attr)
	p.EnableColor()
	return p.Sprint(text)
}

func (c Colorizer) Red(text string) string    { return c.Wrap(ColorRed, text) }
func (c Colorizer) Green(text string) string  { return c.Wrap(ColorGreen, text) }
func (c Colorizer) Yellow(text string) string { return c.Wrap(ColorYellow, text) }
func (c Colorizer) Dim(text string) string    { return c.Wrap(ColorDim, text) }
