// Package review turns scan results into pull request review comments,
// restricted to the lines a change adds.
package review

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Patch is one changed file of a pull request.
type Patch struct {
	Path string
	// AddedLines holds new-file line numbers, ascending.
	AddedLines []int
	// Content is the file at the head revision. When nil the file is read
	// from disk at Path.
	Content []byte
}

// Added reports whether line was added by the patch.
func (p Patch) Added(line int) bool {
	for _, l := range p.AddedLines {
		if l == line {
			return true
		}
		if l > line {
			return false
		}
	}
	return false
}

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ParsePatch extracts the added lines of a unified diff. File headers before
// the first hunk are ignored, so both full git diffs and the hunk-only patches
// returned by the GitHub API work.
func ParsePatch(path, diff string) Patch {
	patch := Patch{Path: path}

	newLine := 0
	inHunk := false
	sc := bufio.NewScanner(strings.NewReader(diff))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		text := sc.Text()
		if m := hunkHeader.FindStringSubmatch(text); m != nil {
			newLine, _ = strconv.Atoi(m[1])
			inHunk = true
			continue
		}
		if !inHunk || text == "" {
			if inHunk {
				// A bare empty line is an unprefixed context line.
				newLine++
			}
			continue
		}
		switch text[0] {
		case '+':
			patch.AddedLines = append(patch.AddedLines, newLine)
			newLine++
		case ' ':
			newLine++
		case '-', '\\':
		default:
			inHunk = false
		}
	}
	return patch
}
