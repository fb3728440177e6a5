// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff produces a readable diff of two texts.
func Diff(a, b string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffPrettyText(diffs)
}

// CompareWithGolden checks result against golden. On mismatch it returns a
// diff and true.
func CompareWithGolden(result string, golden []byte) (string, bool) {
	if !bytes.Equal(golden, []byte(result)) {
		return Diff(result, string(golden)), true
	}
	return "", false
}

// UpdateGoldenFile rewrites path when content differs from what is there and
// reports whether it wrote.
func UpdateGoldenFile(path string, content []byte, mode os.FileMode) (changed bool, err error) {
	old, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if bytes.Equal(old, content) && !os.IsNotExist(err) {
		return false, nil
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}
