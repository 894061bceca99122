// Package servertype reads the installed server type tag from the ENIQ
// descriptor file and checks it against a probe's whitelist.
package servertype

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
)

// DescriptorFile is where the installer records the server type.
const DescriptorFile = "/eniq/installation/config/installed_server_type"

// Whitelist is an immutable ordered set of accepted tags.
type Whitelist struct {
	tags []string
}

func NewWhitelist(tags ...string) Whitelist {
	seen := make(map[string]struct{}, len(tags))
	w := Whitelist{tags: make([]string, 0, len(tags))}
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		w.tags = append(w.tags, tag)
	}
	return w
}

// Tags returns a copy in declaration order.
func (w Whitelist) Tags() []string {
	return append([]string(nil), w.tags...)
}

func (w Whitelist) Len() int { return len(w.tags) }

// IsAccepted is an exact, case-sensitive membership test. No trimming.
func IsAccepted(tag string, w Whitelist) bool {
	for _, accepted := range w.tags {
		if accepted == tag {
			return true
		}
	}
	return false
}

// Classify returns the first line of the file at path, without its line
// terminator. A missing, unreadable or empty file is reported as absent.
func Classify(path string, logger logging.Logger) (string, bool) {
	tag, err := readFirstLine(path)
	if err != nil {
		if errors.IsNotFoundError(err) {
			logger.Errorf("Unable to find server type file %s: %v", path, err)
		} else {
			logger.Errorf("Exception processing server type file %s: %v", path, err)
		}
		return "", false
	}
	logger.Debugf("Server type from %s is %q", path, tag)
	return tag, true
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError("server type file not found", err).WithContext("path", path)
		}
		return "", errors.NewIOError("failed to open server type file", err).WithContext("path", path)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.NewIOError("failed to read server type file", err).WithContext("path", path)
	}
	if err == io.EOF && line == "" {
		return "", errors.NewIOError("server type file is empty", nil).WithContext("path", path)
	}

	// A carriage return also ends a line.
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return line, nil
}

// Classifier binds a descriptor path to a whitelist for use as a gate
// condition.
type Classifier struct {
	Path      string
	Whitelist Whitelist
}

// Accepts classifies afresh and applies the whitelist. Absent counts as not
// accepted.
func (c Classifier) Accepts(logger logging.Logger) bool {
	tag, ok := Classify(c.Path, logger)
	accepted := ok && IsAccepted(tag, c.Whitelist)
	logger.Debugf("isValidServerType returns %t for server type %q", accepted, tag)
	return accepted
}
