package mvn

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/srcfetch/pkg/maven"
)

const (
	goalList    = "dependency:list"
	goalSources = "dependency:sources"
)

// scopes are the dependency scopes whose lines ParseDependencyList accepts.
var scopes = []string{":compile", ":runtime", ":test", ":provided"}

// trailingToken captures the last token on a line when it is the whole line
// or is preceded by at least two whitespace characters.
var trailingToken = regexp.MustCompile(`(?:^|\s{2,})(\S+)$`)

// Lister resolves the dependency list of a pom.xml with "mvn dependency:list".
type Lister struct {
	Runner     Runner
	Descriptor string // Path to pom.xml
	Logger     *log.Logger
}

// List runs the tool and parses its output.
//
// Tool failures are logged and yield whatever could be parsed, usually
// nothing. The only error returned is ctx.Err() when the context ends first.
func (l *Lister) List(ctx context.Context) ([]maven.Coordinate, error) {
	logger := loggerOrDefault(l.Logger)

	res, err := l.Runner.Run(ctx, goalArgs(l.Descriptor, goalList))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		logger.Warn("dependency list unavailable", "error", err)
		return nil, nil
	}
	logger.Debug("mvn "+goalList, "exit", res.ExitCode, "output", string(res.Stdout))
	if res.ExitCode != 0 {
		logger.Warn("mvn "+goalList+" failed", "exit", res.ExitCode)
	}

	deps := ParseDependencyList(res.Stdout)
	if len(deps) == 0 && res.ExitCode == 0 {
		logger.Warn("mvn " + goalList + " listed no dependencies")
	}
	return deps, nil
}

// SourceTrigger downloads source archives into the local repository with
// "mvn dependency:sources".
type SourceTrigger struct {
	Runner     Runner
	Descriptor string // Path to pom.xml
	Logger     *log.Logger
}

// Fetch runs the tool and waits for it to finish.
//
// Tool failures are logged and otherwise ignored: archives that were not
// downloaded are simply not found later. The only error returned is
// ctx.Err() when the context ends first.
func (s *SourceTrigger) Fetch(ctx context.Context) error {
	logger := loggerOrDefault(s.Logger)

	res, err := s.Runner.Run(ctx, goalArgs(s.Descriptor, goalSources))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		logger.Warn("source download unavailable", "error", err)
		return nil
	}
	logger.Debug("mvn "+goalSources, "exit", res.ExitCode, "output", string(res.Stdout))
	if res.ExitCode != 0 {
		logger.Warn("mvn "+goalSources+" failed", "exit", res.ExitCode)
	}
	return nil
}

// ParseDependencyList extracts coordinates from "mvn dependency:list" output.
//
// A line is used when, after trimming and dropping a trailing
// "-- module ..." annotation, it ends in one of the scopes compile, runtime,
// test or provided. Its trailing token must have the form
// group:artifact:type:version:scope or
// group:artifact:type:classifier:version:scope; type, classifier and scope
// are discarded. Repeated coordinates are dropped.
func ParseDependencyList(output []byte) []maven.Coordinate {
	var deps []maven.Coordinate
	seen := make(map[maven.Coordinate]bool)

	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		c, ok := parseListLine(sc.Text())
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		deps = append(deps, c)
	}
	return deps
}

func parseListLine(line string) (maven.Coordinate, bool) {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, " -- "); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if !hasScope(line) {
		return maven.Coordinate{}, false
	}

	m := trailingToken.FindStringSubmatch(line)
	if m == nil {
		return maven.Coordinate{}, false
	}

	pieces := strings.Split(m[1], ":")
	var version string
	switch len(pieces) {
	case 5:
		version = pieces[3]
	case 6:
		version = pieces[4]
	default:
		return maven.Coordinate{}, false
	}

	c, err := maven.NewCoordinate(pieces[0], pieces[1], version)
	if err != nil {
		return maven.Coordinate{}, false
	}
	return c, true
}

func hasScope(line string) bool {
	for _, s := range scopes {
		if strings.HasSuffix(line, s) {
			return true
		}
	}
	return false
}

func loggerOrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
