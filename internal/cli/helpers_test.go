package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/srcfetch/pkg/mvn"
)

// stubTool answers mvn goals with canned output and records the arguments.
type stubTool struct {
	mu     sync.Mutex
	calls  [][]string
	output map[string]string
}

func (s *stubTool) Run(ctx context.Context, args []string) (mvn.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]string(nil), args...))
	return mvn.Result{Stdout: []byte(s.output[args[len(args)-1]])}, nil
}

// isolate points HOME and the XDG directories at temp dirs and captures
// stdout. It returns the captured output buffer.
func isolate(t *testing.T) *bytes.Buffer {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("SRCFETCH_REPO_ROOT", "")
	t.Setenv("SRCFETCH_MVN", "")

	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func newTestCLI(tool mvn.Runner) *CLI {
	c := New(io.Discard, LogInfo)
	c.Tool = tool
	return c
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// writeSourcesJar creates <root>/repository/<group>/<artifact>/<version>/...-sources.jar
// holding a single member.
func writeSourcesJar(t *testing.T, root, group, artifact, version, member, body string) {
	t.Helper()
	parts := append([]string{root, "repository"}, strings.Split(group, ".")...)
	dir := filepath.Join(append(parts, artifact, version)...)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, artifact+"-"+version+"-sources.jar"))
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create(member)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

const springPom = `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>com.example</groupId>
  <artifactId>web</artifactId>
  <version>0.1</version>
  <properties>
    <spring.version>3.1.4.RELEASE</spring.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.springframework</groupId>
      <artifactId>spring-core</artifactId>
      <version>${spring.version}</version>
    </dependency>
  </dependencies>
</project>`
