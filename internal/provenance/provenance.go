// Package provenance emits SLSA-style attestations describing how the
// workspace's pinned dependency set was produced.
package provenance

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rcm-dev/rcm/internal/lockfile"
	"github.com/rcm-dev/rcm/internal/sbom"
)

const (
	statementType  = "https://in-toto.io/Statement/v0.1"
	predicateType  = "https://slsa.dev/provenance/v0.2"
	builderIDBase  = "https://rcm.dev/builder"
	buildTypeValue = "https://rcm.dev/buildtypes/dependency-resolution/v1"
)

// Subject identifies one artifact covered by the attestation.
type Subject struct {
	Name   string            `json:"name"`
	Digest map[string]string `json:"digest,omitempty"`
}

// Statement is the in-toto envelope around the SLSA predicate.
type Statement struct {
	Type          string    `json:"_type"`
	Subject       []Subject `json:"subject"`
	PredicateType string    `json:"predicateType"`
	Predicate     Predicate `json:"predicate"`
}

// Predicate carries the SLSA provenance body.
type Predicate struct {
	Builder struct {
		ID string `json:"id"`
	} `json:"builder"`
	BuildType  string `json:"buildType"`
	Invocation struct {
		ConfigSource struct {
			URI string `json:"uri"`
		} `json:"configSource"`
		Parameters map[string]interface{} `json:"parameters,omitempty"`
	} `json:"invocation"`
	Metadata struct {
		BuildInvocationID string `json:"buildInvocationId"`
		BuildStartedOn    string `json:"buildStartedOn"`
		BuildFinishedOn   string `json:"buildFinishedOn"`
	} `json:"metadata"`
	Materials []Material `json:"materials"`
}

// Material is one resolved dependency that went into the build.
type Material struct {
	URI string `json:"uri"`
}

// Generate renders an attestation for the pinned dependency set.
func Generate(lock *lockfile.Lockfile, workspaceName string, rcmVersion string, now time.Time) ([]byte, error) {
	statement := Statement{
		Type:          statementType,
		PredicateType: predicateType,
		Subject: []Subject{
			{Name: workspaceName},
		},
	}
	statement.Predicate.Builder.ID = builderIDBase + "/rcm@" + rcmVersion
	statement.Predicate.BuildType = buildTypeValue
	statement.Predicate.Invocation.ConfigSource.URI = "rcm.json"
	statement.Predicate.Metadata.BuildInvocationID = uuid.NewString()
	timestamp := now.UTC().Format(time.RFC3339)
	statement.Predicate.Metadata.BuildStartedOn = timestamp
	statement.Predicate.Metadata.BuildFinishedOn = timestamp

	statement.Predicate.Materials = []Material{}
	for _, pkg := range lock.Packages {
		statement.Predicate.Materials = append(statement.Predicate.Materials, Material{
			URI: sbom.Purl(pkg),
		})
	}
	return json.MarshalIndent(statement, "", "  ")
}
