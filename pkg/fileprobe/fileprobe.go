// Package fileprobe holds the filesystem predicates used by discovery gates.
// Every check re-reads the filesystem; nothing is cached between calls.
package fileprobe

import (
	"fmt"
	"os"
)

type CheckKind string

const (
	CheckExists      CheckKind = "exists"
	CheckIsFile      CheckKind = "is_file"
	CheckIsDirectory CheckKind = "is_directory"
	CheckIsReadable  CheckKind = "is_readable"
)

// PathCheck is an immutable path plus the predicate applied to it.
type PathCheck struct {
	Path string
	Kind CheckKind
}

func Exists(path string) PathCheck      { return PathCheck{Path: path, Kind: CheckExists} }
func IsFile(path string) PathCheck      { return PathCheck{Path: path, Kind: CheckIsFile} }
func IsDirectory(path string) PathCheck { return PathCheck{Path: path, Kind: CheckIsDirectory} }
func IsReadable(path string) PathCheck  { return PathCheck{Path: path, Kind: CheckIsReadable} }

// Check applies the predicate. Any stat failure reads as false.
func (c PathCheck) Check() bool {
	if c.Path == "" {
		return false
	}
	switch c.Kind {
	case CheckExists:
		_, err := os.Stat(c.Path)
		return err == nil
	case CheckIsFile:
		info, err := os.Stat(c.Path)
		return err == nil && info.Mode().IsRegular()
	case CheckIsDirectory:
		info, err := os.Stat(c.Path)
		return err == nil && info.IsDir()
	case CheckIsReadable:
		return isReadable(c.Path)
	default:
		return false
	}
}

// String names the check for gate diagnostics, e.g. "is_file(/opt/x.pl)".
func (c PathCheck) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.Path)
}
