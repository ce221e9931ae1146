// Package maven models Maven dependency coordinates and the two places they
// come from and lead to: the pom.xml that declares them and the local
// repository that caches their source archives.
//
// # Coordinates
//
// A [Coordinate] is the "groupId:artifactId:version" triple:
//
//	c, err := maven.ParseCoordinate("org.springframework:spring-core:3.1.4.RELEASE")
//	fmt.Println(c.ArtifactID) // spring-core
//
// # Descriptor Parsing
//
// [ParseDescriptor] reads the top-level <dependencies> of a pom.xml and
// resolves ${property} placeholders from its <properties> block. The result
// is an [Extraction]; malformed XML yields an empty list with Err set rather
// than a failure:
//
//	ex := maven.ParseDescriptor(string(data))
//	if ex.Err != nil {
//	    log.Warn("unreadable pom", "error", ex.Err)
//	}
//	for _, c := range ex.Coordinates { ... }
//
// [ExtractDependencies] is the same operation without the diagnostics.
//
// # Repository Layout
//
// Source archives live at
//
//	<root>/repository/<group path>/<artifactId>/<version>/<artifactId>-<version>-sources.jar
//
// where the group path is the groupId with "." turned into directory
// separators. [ArchiveDirectory], [ArchiveFilename] and [ArchivePath] compute
// this without I/O; [Repository.DeriveSourcePaths] keeps only the archives
// that exist.
package maven
