package maven

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/matzehuels/srcfetch/pkg/errors"
)

// Extraction is the outcome of parsing a pom.xml.
//
// A malformed document is not a failure of the caller's run: Coordinates is
// empty and Err explains why. Empty or blank input gives an empty Extraction
// with a nil Err.
type Extraction struct {
	Project     *Coordinate         // The pom's own coordinate; nil when incomplete
	Coordinates []Coordinate        // Declared dependencies, in document order
	Skipped     []SkippedDependency // Dependencies missing a part after substitution
	Err         error               // MALFORMED_INPUT when the XML cannot be parsed
}

// SkippedDependency records a declared dependency that could not form a
// coordinate.
type SkippedDependency struct {
	Raw    string // "groupId:artifactId:version" as substituted, parts may be empty
	Reason error
}

// ExtractDependencies returns the dependency coordinates declared in a pom.xml.
// It never fails: blank input, malformed XML and a missing <dependencies>
// section all produce an empty slice.
func ExtractDependencies(pomXML string) []Coordinate {
	return ParseDescriptor(pomXML).Coordinates
}

// ParseDescriptor parses pom.xml text into an [Extraction].
//
// Only the top-level <dependencies> section is read; <dependencyManagement>
// and profiles are ignored. Each groupId, artifactId and version is trimmed
// and then passed through [ReplaceProperties] using the pom's <properties>
// plus the project.groupId, project.artifactId and project.version built-ins.
func ParseDescriptor(pomXML string) Extraction {
	if strings.TrimSpace(pomXML) == "" {
		return Extraction{}
	}

	var pom pomProject
	dec := xml.NewDecoder(strings.NewReader(pomXML))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&pom); err != nil {
		return Extraction{Err: errors.Wrap(errors.ErrCodeMalformedInput, err, "parse pom.xml")}
	}
	if err := checkTrailing(dec); err != nil {
		return Extraction{Err: errors.Wrap(errors.ErrCodeMalformedInput, err, "parse pom.xml")}
	}

	props := pom.propertyMap()
	ex := Extraction{Project: pom.coordinate(props)}
	for _, dep := range pom.Dependencies {
		g := ReplaceProperties(strings.TrimSpace(dep.GroupID), props)
		a := ReplaceProperties(strings.TrimSpace(dep.ArtifactID), props)
		v := ReplaceProperties(strings.TrimSpace(dep.Version), props)

		c, err := NewCoordinate(g, a, v)
		if err != nil {
			ex.Skipped = append(ex.Skipped, SkippedDependency{Raw: g + ":" + a + ":" + v, Reason: err})
			continue
		}
		ex.Coordinates = append(ex.Coordinates, c)
	}
	return ex
}

// checkTrailing reads the rest of the document after the root element.
// Only whitespace, comments and processing instructions may follow it.
func checkTrailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return fmt.Errorf("unexpected text %q after root element", bytes.TrimSpace(t))
			}
		default:
			return fmt.Errorf("unexpected %T after root element", t)
		}
	}
}

// ReplaceProperties substitutes ${name} placeholders in text with values from
// props.
//
// The text is scanned once from left to right. Every placeholder whose name is
// in props is replaced; unknown names and "${}" are kept verbatim, as is an
// unterminated "${". Substituted values are not scanned again, so a value
// containing "${...}" comes out literally. Text around placeholders is kept:
// "10${port}" with port=411 becomes "10411".
func ReplaceProperties(text string, props map[string]string) string {
	if !strings.Contains(text, "${") {
		return text
	}

	var b strings.Builder
	rest := text
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start+2:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start + 2

		b.WriteString(rest[:start])
		name := rest[start+2 : end]
		if value, ok := props[name]; ok && name != "" {
			b.WriteString(value)
		} else {
			b.WriteString(rest[start : end+1])
		}
		rest = rest[end+1:]
	}
	return b.String()
}

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Parent       *pomParent      `xml:"parent"`
	Properties   pomProperties   `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// pomProperties collects the children of <properties> by element name.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := pomProperties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

// groupID and version fall back to the parent, as Maven inherits them.
func (p *pomProject) groupID() string {
	if g := strings.TrimSpace(p.GroupID); g != "" || p.Parent == nil {
		return g
	}
	return strings.TrimSpace(p.Parent.GroupID)
}

func (p *pomProject) version() string {
	if v := strings.TrimSpace(p.Version); v != "" || p.Parent == nil {
		return v
	}
	return strings.TrimSpace(p.Parent.Version)
}

// propertyMap merges declared properties with the project.* built-ins.
// Declared properties take precedence.
func (p *pomProject) propertyMap() map[string]string {
	props := make(map[string]string, len(p.Properties)+3)
	builtins := map[string]string{
		"project.groupId":    p.groupID(),
		"project.artifactId": strings.TrimSpace(p.ArtifactID),
		"project.version":    p.version(),
	}
	for k, v := range builtins {
		if v != "" {
			props[k] = v
		}
	}
	for k, v := range p.Properties {
		props[k] = v
	}
	return props
}

func (p *pomProject) coordinate(props map[string]string) *Coordinate {
	c, err := NewCoordinate(
		ReplaceProperties(p.groupID(), props),
		ReplaceProperties(strings.TrimSpace(p.ArtifactID), props),
		ReplaceProperties(p.version(), props),
	)
	if err != nil {
		return nil
	}
	return &c
}
