package comp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RootLoc is the locator of the ownership tree's root component.
const RootLoc = "$"

// GlobalPrefix marks a locator that is already absolute. User-facing APIs
// that normally resolve short names relative to the assets subtree strip
// this prefix and treat the remainder as a full locator.
const GlobalPrefix = "global:"

// locSep separates locator segments.
const locSep = "."

// segmentPattern matches one locator segment: a name, or a bare
// non-negative integer for positional addressing.
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SplitLoc validates an absolute locator and returns its segments,
// including the leading root token.
func SplitLoc(loc string) ([]string, error) {
	if loc == "" {
		return nil, fmt.Errorf("%w: empty locator", ErrLocatorNotFound)
	}
	segs := strings.Split(loc, locSep)
	if segs[0] != RootLoc {
		return nil, fmt.Errorf("%w: locator %q is not rooted at %q", ErrLocatorNotFound, loc, RootLoc)
	}
	for _, s := range segs[1:] {
		if !segmentPattern.MatchString(s) {
			return nil, fmt.Errorf("%w: invalid segment %q in %q", ErrLocatorNotFound, s, loc)
		}
	}
	return segs, nil
}

// JoinLoc appends a segment to a locator.
func JoinLoc(parent, name string) string {
	return parent + locSep + name
}

// SplitLast splits a locator into its parent locator and final segment.
// The root locator has no parent.
func SplitLast(loc string) (parent, last string, err error) {
	segs, err := SplitLoc(loc)
	if err != nil {
		return "", "", err
	}
	if len(segs) == 1 {
		return "", "", fmt.Errorf("%w: locator %q has no parent", ErrLocatorNotFound, loc)
	}
	return strings.Join(segs[:len(segs)-1], locSep), segs[len(segs)-1], nil
}

// AssetLoc expands a user-facing asset name into an absolute locator.
// Plain names resolve relative to the assets subtree; a name carrying the
// global prefix is stripped and used as a full locator, which lets APIs
// accept short convenience names while still supporting fully qualified
// cross-tree references.
func AssetLoc(name string) string {
	if strings.HasPrefix(name, GlobalPrefix) {
		return strings.TrimPrefix(name, GlobalPrefix)
	}
	return RootLoc + locSep + "assets" + locSep + name
}

// indexSegment parses a positional segment. A segment is positional when it
// is a bare non-negative integer.
func indexSegment(seg string) (int, bool) {
	if seg == "" || (seg[0] == '0' && len(seg) > 1) {
		return 0, false
	}
	n, err := strconv.Atoi(seg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
