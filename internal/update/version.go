package update

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// maxLabelLength bounds version labels so they stay usable as file names.
const maxLabelLength = 128

var (
	errEmptyLabel   = errors.New("version label is empty")
	errLabelTooLong = fmt.Errorf("version label exceeds %d characters", maxLabelLength)
)

// ValidateLabel rejects version labels that cannot be used as a file name
// on any supported platform.
func ValidateLabel(label string) error {
	if label == "" {
		return errEmptyLabel
	}
	if len(label) > maxLabelLength {
		return errLabelTooLong
	}
	if label == "." || label == ".." {
		return fmt.Errorf("invalid version label %q", label)
	}
	if i := strings.IndexAny(label, `/\:*?"<>|`); i >= 0 {
		return fmt.Errorf("version label %q contains reserved character %q", label, label[i])
	}
	for _, r := range label {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("version label %q contains a control character", label)
		}
	}
	if strings.HasSuffix(label, ".") || strings.HasSuffix(label, " ") {
		return fmt.Errorf("version label %q must not end with a dot or space", label)
	}
	return nil
}

// canonical returns the semver form of label ("v" prefixed), or "" when the
// label is not a semantic version.
func canonical(label string) string {
	v := label
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// CompareLabels orders two version labels.
// Returns:
//   - 1 if a > b
//   - 0 if a == b
//   - -1 if a < b
//
// Semantic versions compare by precedence and sort above free-form labels;
// two free-form labels compare lexically.
func CompareLabels(a, b string) int {
	va, vb := canonical(a), canonical(b)
	switch {
	case va != "" && vb != "":
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case va != "":
		return 1
	case vb != "":
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// SortLabelsDesc sorts labels newest first
func SortLabelsDesc(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return CompareLabels(labels[i], labels[j]) > 0
	})
}
