// Package mvn drives the Maven command-line tool.
//
// # Overview
//
// Two units of work wrap one mvn invocation each against the same pom.xml:
//
//   - [Lister] runs "mvn dependency:list" and parses the resolved
//     dependencies out of its output
//   - [SourceTrigger] runs "mvn dependency:sources" so that source archives
//     land in the local repository
//
// Both are permissive. A missing mvn binary, a non-zero exit or output that
// does not parse leaves the Lister with an empty or partial list and the
// Trigger with nothing to show; the failure is logged, not returned. Only
// context cancellation is reported as an error, so callers can enforce a
// timeout.
//
// # Runner
//
// Process execution goes through the [Runner] interface. [ExecRunner] runs
// the real binary with os/exec; tests substitute a fake.
//
// # Output Format
//
// [ParseDependencyList] understands lines such as
//
//	[INFO]    org.springframework:spring-webmvc:jar:3.1.4.RELEASE:compile
//	[INFO]    org.slf4j:slf4j-api:jar:2.0.9:compile -- module org.slf4j
//
// and turns each into "groupId:artifactId:version".
package mvn
