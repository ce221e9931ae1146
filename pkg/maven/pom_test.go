package maven

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/srcfetch/pkg/errors"
)

func wrapProject(body string) string {
	return `<?xml version="1.0"?>
<project xmlns="http://maven.apache.org/POM/4.0.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://maven.apache.org/POM/4.0.0 http://maven.apache.org/xsd/maven-4.0.0.xsd">
` + body + `
</project>`
}

func TestExtractDependencies_Empty(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", " \n\t "},
		{"no dependencies section", wrapProject("")},
		{"empty dependencies section", wrapProject("<dependencies>\n</dependencies>")},
		{"malformed", "<project><dependencies>"},
		{"trailing garbage", wrapProject("") + "<oops"},
		{"path traversal version", wrapProject(`<dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId><version>../../../../../../tmp/evil</version></dependency></dependencies>`)},
		{"not xml", "this is not a pom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDependencies(tt.input); len(got) != 0 {
				t.Errorf("ExtractDependencies() = %v, want empty", got)
			}
		})
	}
}

func TestParseDescriptor_Malformed(t *testing.T) {
	ex := ParseDescriptor("<project><dependencies>")
	if ex.Err == nil {
		t.Fatal("expected Err for malformed XML")
	}
	if !errors.Is(ex.Err, errors.ErrCodeMalformedInput) {
		t.Errorf("Err code = %v, want %v", errors.GetCode(ex.Err), errors.ErrCodeMalformedInput)
	}
	if len(ex.Coordinates) != 0 {
		t.Errorf("Coordinates = %v, want empty", ex.Coordinates)
	}

	trailing := []struct {
		name  string
		input string
	}{
		{"unterminated element", "<project><dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId><version>1</version></dependency></dependencies></project><oops"},
		{"second root", "<project></project><project></project>"},
		{"trailing text", "<project></project>junk"},
	}
	for _, tt := range trailing {
		t.Run(tt.name, func(t *testing.T) {
			ex := ParseDescriptor(tt.input)
			if !errors.Is(ex.Err, errors.ErrCodeMalformedInput) {
				t.Errorf("Err = %v, want %v", ex.Err, errors.ErrCodeMalformedInput)
			}
			if len(ex.Coordinates) != 0 || ex.Project != nil {
				t.Errorf("Extraction = %+v, want empty", ex)
			}
		})
	}

	ok := "<?xml version=\"1.0\"?>\n<!-- head -->\n<project><dependencies><dependency><groupId>g</groupId><artifactId>a</artifactId><version>1</version></dependency></dependencies></project>\n<!-- tail -->\n<?pi x?>\n"
	if ex := ParseDescriptor(ok); ex.Err != nil || len(ex.Coordinates) != 1 {
		t.Errorf("trailing comment and PI: Err = %v, Coordinates = %v", ex.Err, ex.Coordinates)
	}

	if ex := ParseDescriptor("   "); ex.Err != nil {
		t.Errorf("blank input should not set Err, got %v", ex.Err)
	}
}

func TestExtractDependencies_HappyPath(t *testing.T) {
	pom := wrapProject(`
	<dependencies>
		<dependency>
			<groupId>org.springframework</groupId>
			<artifactId>spring-core</artifactId>
			<version>3.1.4.RELEASE</version>
		</dependency>
	</dependencies>`)

	got := Strings(ExtractDependencies(pom))
	want := []string{"org.springframework:spring-core:3.1.4.RELEASE"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractDependencies() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDependencies_PropertyPlaceholders(t *testing.T) {
	pom := wrapProject(`
	<properties>
		<spring.version>3.1.4.RELEASE</spring.version>
	</properties>
	<dependencies>
		<dependency>
			<groupId>org.springframework</groupId>
			<artifactId>spring-core</artifactId>
			<version>${spring.version}</version>
		</dependency>
	</dependencies>`)

	got := Strings(ExtractDependencies(pom))
	want := []string{"org.springframework:spring-core:3.1.4.RELEASE"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractDependencies() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDescriptor_Details(t *testing.T) {
	pom := wrapProject(`
	<parent>
		<groupId>com.example</groupId>
		<artifactId>parent</artifactId>
		<version>2.0.0</version>
	</parent>
	<artifactId>app</artifactId>
	<properties>
		<guava.version>31.0-jre</guava.version>
	</properties>
	<dependencyManagement>
		<dependencies>
			<dependency>
				<groupId>managed</groupId>
				<artifactId>only</artifactId>
				<version>1.0</version>
			</dependency>
		</dependencies>
	</dependencyManagement>
	<dependencies>
		<dependency>
			<groupId>  com.google.guava  </groupId>
			<artifactId>guava</artifactId>
			<version>
				${guava.version}
			</version>
		</dependency>
		<dependency>
			<groupId>${project.groupId}</groupId>
			<artifactId>sibling</artifactId>
			<version>${project.version}</version>
		</dependency>
		<dependency>
			<groupId>org.projectlombok</groupId>
			<artifactId>lombok</artifactId>
		</dependency>
		<dependency>
			<groupId>org.unknown</groupId>
			<artifactId>unknown</artifactId>
			<version>${unknown.version}</version>
		</dependency>
	</dependencies>`)

	ex := ParseDescriptor(pom)
	if ex.Err != nil {
		t.Fatalf("unexpected Err: %v", ex.Err)
	}

	want := []string{
		"com.google.guava:guava:31.0-jre",
		"com.example:sibling:2.0.0",
		"org.unknown:unknown:${unknown.version}",
	}
	if diff := cmp.Diff(want, Strings(ex.Coordinates)); diff != "" {
		t.Errorf("Coordinates mismatch (-want +got):\n%s", diff)
	}

	if len(ex.Skipped) != 1 || ex.Skipped[0].Raw != "org.projectlombok:lombok:" {
		t.Errorf("Skipped = %+v, want lombok without version", ex.Skipped)
	}

	if ex.Project == nil || ex.Project.String() != "com.example:app:2.0.0" {
		t.Errorf("Project = %v, want com.example:app:2.0.0", ex.Project)
	}
}

func TestParseDescriptor_Latin1(t *testing.T) {
	pom := `<?xml version="1.0" encoding="ISO-8859-1"?>
<project>
	<dependencies>
		<dependency>
			<groupId>junit</groupId>
			<artifactId>junit</artifactId>
			<version>4.13</version>
		</dependency>
	</dependencies>
</project>`

	ex := ParseDescriptor(pom)
	if ex.Err != nil {
		t.Fatalf("unexpected Err: %v", ex.Err)
	}
	if len(ex.Coordinates) != 1 {
		t.Errorf("Coordinates = %v, want one", ex.Coordinates)
	}
}

func TestReplaceProperties(t *testing.T) {
	props := map[string]string{
		"spring.version": "3.1.4.RELEASE",
		"tomcat.port":    "411",
		"a":              "A",
		"b":              "B",
		"nested":         "${a}",
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"simple", "${spring.version}", "3.1.4.RELEASE"},
		{"literal prefix", "10${tomcat.port}", "10411"},
		{"literal suffix", "${tomcat.port}0", "4110"},
		{"unknown property", "${godlike}", "${godlike}"},
		{"no placeholder", "plain", "plain"},
		{"empty", "", ""},
		{"empty name", "${}", "${}"},
		{"unterminated", "x${a", "x${a"},
		{"multiple", "${a}-${b}", "A-B"},
		{"mixed known unknown", "${a}${zzz}${b}", "A${zzz}B"},
		{"value not rescanned", "${nested}", "${a}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplaceProperties(tt.text, props); got != tt.want {
				t.Errorf("ReplaceProperties(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestReplaceProperties_Idempotent(t *testing.T) {
	props := map[string]string{"v": "1.0", "w": "2.0"}
	for _, text := range []string{"${v}", "x${v}y", "${v}${w}", "${missing}", "plain"} {
		once := ReplaceProperties(text, props)
		twice := ReplaceProperties(once, props)
		if once != twice {
			t.Errorf("ReplaceProperties(%q): once %q, twice %q", text, once, twice)
		}
	}
}
