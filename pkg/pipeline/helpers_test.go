package pipeline

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/srcfetch/pkg/mvn"
)

// fakeTool stands in for mvn. Each goal maps to a handler; unknown goals
// succeed with no output.
type fakeTool struct {
	mu       sync.Mutex
	calls    []string
	handlers map[string]func(ctx context.Context) (mvn.Result, error)
}

func newFakeTool() *fakeTool {
	return &fakeTool{handlers: map[string]func(ctx context.Context) (mvn.Result, error){}}
}

func (f *fakeTool) on(goal string, fn func(ctx context.Context) (mvn.Result, error)) *fakeTool {
	f.handlers[goal] = fn
	return f
}

func (f *fakeTool) Run(ctx context.Context, args []string) (mvn.Result, error) {
	goal := args[len(args)-1]
	f.mu.Lock()
	f.calls = append(f.calls, goal)
	fn := f.handlers[goal]
	f.mu.Unlock()
	if fn == nil {
		return mvn.Result{}, nil
	}
	return fn(ctx)
}

func (f *fakeTool) count(goal string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == goal {
			n++
		}
	}
	return n
}

// listing returns a dependency:list handler printing the given tokens the way
// mvn does.
func listing(tokens ...string) func(ctx context.Context) (mvn.Result, error) {
	var b strings.Builder
	b.WriteString("[INFO] Scanning for projects...\n")
	b.WriteString("[INFO] The following files have been resolved:\n")
	for _, tok := range tokens {
		b.WriteString("[INFO]    " + tok + "\n")
	}
	b.WriteString("[INFO] BUILD SUCCESS\n")
	out := []byte(b.String())
	return func(ctx context.Context) (mvn.Result, error) {
		return mvn.Result{Stdout: out}, nil
	}
}

// hang blocks until the context ends, like a stuck mvn.
func hang(ctx context.Context) (mvn.Result, error) {
	<-ctx.Done()
	return mvn.Result{ExitCode: -1}, ctx.Err()
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

const junitPom = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <properties>
    <junit.version>4.13</junit.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>${junit.version}</version>
    </dependency>
  </dependencies>
</project>
`

func writePom(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "pom.xml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeSourcesJar puts a sources archive for g:a:v under root/repository.
func writeSourcesJar(t *testing.T, root, group, artifact, version string, members map[string]string) string {
	t.Helper()
	dir := filepath.Join(append([]string{root, "repository"}, strings.Split(group, ".")...)...)
	dir = filepath.Join(dir, artifact, version)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, artifact+"-"+version+"-sources.jar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}
