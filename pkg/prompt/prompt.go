/* Copyright 2025 Dreambuilder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prompt provides utilities for interactive yes/no prompts
// shared by the dream client and server commands
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var affirmatives = map[string]bool{
	"y":   true,
	"yes": true,
}

// FormatQuestion appends the choice indicator to a yes/no question. The
// capitalized choice is the one taken on an empty answer.
func FormatQuestion(question string, optimistic bool) string {
	if optimistic {
		return fmt.Sprintf("%s (Y/n)", question)
	}

	return fmt.Sprintf("%s (y/N)", question)
}

// ReadLine reads a single line from the reader, without the line ending
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", errors.Wrap(err, "reading a line")
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// ReadYesNo reads an answer from the reader. An empty answer counts as a
// yes only in optimistic mode.
func ReadYesNo(r io.Reader, optimistic bool) (bool, error) {
	line, err := ReadLine(r)
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return optimistic, nil
	}

	return affirmatives[answer], nil
}
