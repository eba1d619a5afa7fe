// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package formatutil colorizes the engine's terminal diagnostics: progress messages logged by config.LogGroup and
// the strapprox CLI's ACCEPT/REJECT sample-string report. Color is a no-op (plain fmt.Sprint) when stdout isn't a
// terminal, so piped or redirected output stays free of escape codes.
package formatutil

import (
	"fmt"

	"golang.org/x/term"
)

var (
	// Faint marks progress/status lines (stage names in the C5-C8 pipeline trace).
	Faint = Color("\033[2m%s\033[0m")
	// Red marks a parse/build error or a rejected sample string.
	Red = Color("\033[1;31m%s\033[0m")
	// Green marks an accepted sample string.
	Green = Color("\033[1;32m%s\033[0m")
)

func Color(colorString string) func(...interface{}) string {
	result := func(args ...interface{}) string {
		if term.IsTerminal(1) {
			return fmt.Sprintf(colorString,
				fmt.Sprint(args...))
		} else {
			return fmt.Sprint(args...)
		}
	}
	return result
}

// Sanitize is a simple sanitizer that removes all escape sequences
func Sanitize(s string) string {
	r := fmt.Sprintf("%q", s)
	if len(r) >= 2 {
		return r[1 : len(r)-1]
	} else {
		return r
	}
}

