// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 12 // Width for outcome text
)

// Symbol returns the colored marker for an outcome
func Symbol(o Outcome) string {
	switch o {
	case OutcomeChanged:
		return color.YellowString("⟳")
	case OutcomeUnchanged:
		return color.GreenString("✓")
	case OutcomeSkipped:
		return color.HiBlackString("-")
	case OutcomeFailed:
		return color.RedString("✗")
	case OutcomeNoContext:
		return color.CyanString("•")
	default:
		return color.HiBlackString("?")
	}
}

// 🎯 FormatFileLine formats one report row: symbol, path, outcome and detail
func FormatFileLine(path string, o Outcome, detail string) string {
	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	statusPart := fmt.Sprintf("%-*s", statusWidth, o.String())

	line := fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", fileIndent),
		Symbol(o),
		namePart,
		statusPart,
	)
	if detail != "" {
		line += " " + color.New(color.Faint).Sprint(detail)
	}
	return strings.TrimRight(line, " ")
}
