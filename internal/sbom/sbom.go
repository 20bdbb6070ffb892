// Package sbom renders the lockfile as a software bill of materials.
package sbom

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rcm-dev/rcm/internal/lockfile"
)

// Format selects the output document type.
type Format string

const (
	// FormatCycloneDX is CycloneDX 1.4 JSON.
	FormatCycloneDX Format = "cyclonedx"
	// FormatSPDX is SPDX 2.3 JSON.
	FormatSPDX Format = "spdx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatCycloneDX, FormatSPDX:
		return Format(name), nil
	default:
		return "", errors.Errorf("unknown sbom format: %v (expected cyclonedx or spdx)", name)
	}
}

// purlType maps manager slugs to package-url types.
var purlType = map[string]string{
	"cargo":    "cargo",
	"npm":      "npm",
	"composer": "composer",
	"system":   "generic",
}

// Purl builds the package-url for a locked package.
func Purl(pkg lockfile.LockedPackage) string {
	ptype, ok := purlType[pkg.Manager]
	if !ok {
		ptype = "generic"
	}
	return fmt.Sprintf("pkg:%v/%v@%v", ptype, pkg.Name, pkg.Version)
}

type cycloneDXComponent struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Purl    string `json:"purl"`
	Scope   string `json:"scope,omitempty"`
}

type cycloneDXDocument struct {
	BOMFormat    string `json:"bomFormat"`
	SpecVersion  string `json:"specVersion"`
	SerialNumber string `json:"serialNumber"`
	Version      int    `json:"version"`
	Metadata     struct {
		Timestamp string `json:"timestamp"`
		Tools     []struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"tools"`
	} `json:"metadata"`
	Components []cycloneDXComponent `json:"components"`
}

type spdxPackage struct {
	SPDXID           string `json:"SPDXID"`
	Name             string `json:"name"`
	VersionInfo      string `json:"versionInfo"`
	DownloadLocation string `json:"downloadLocation"`
	ExternalRefs     []struct {
		ReferenceCategory string `json:"referenceCategory"`
		ReferenceType     string `json:"referenceType"`
		ReferenceLocator  string `json:"referenceLocator"`
	} `json:"externalRefs"`
}

type spdxDocument struct {
	SPDXVersion       string `json:"spdxVersion"`
	DataLicense       string `json:"dataLicense"`
	SPDXID            string `json:"SPDXID"`
	Name              string `json:"name"`
	DocumentNamespace string `json:"documentNamespace"`
	CreationInfo      struct {
		Created  string   `json:"created"`
		Creators []string `json:"creators"`
	} `json:"creationInfo"`
	Packages []spdxPackage `json:"packages"`
}

// Generate renders the lockfile in the requested format. workspaceName
// labels the document; rcmVersion identifies the generating tool.
func Generate(lock *lockfile.Lockfile, format Format, workspaceName string, rcmVersion string, now time.Time) ([]byte, error) {
	switch format {
	case FormatCycloneDX:
		return generateCycloneDX(lock, rcmVersion, now)
	case FormatSPDX:
		return generateSPDX(lock, workspaceName, now)
	default:
		return nil, errors.Errorf("unknown sbom format: %v", format)
	}
}

func generateCycloneDX(lock *lockfile.Lockfile, rcmVersion string, now time.Time) ([]byte, error) {
	doc := cycloneDXDocument{
		BOMFormat:    "CycloneDX",
		SpecVersion:  "1.4",
		SerialNumber: "urn:uuid:" + uuid.NewString(),
		Version:      1,
	}
	doc.Metadata.Timestamp = now.UTC().Format(time.RFC3339)
	doc.Metadata.Tools = []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}{{Name: "rcm", Version: rcmVersion}}

	doc.Components = []cycloneDXComponent{}
	for _, pkg := range lock.Packages {
		component := cycloneDXComponent{
			Type:    "library",
			Name:    pkg.Name,
			Version: pkg.Version,
			Purl:    Purl(pkg),
		}
		if pkg.Dev {
			component.Scope = "optional"
		}
		doc.Components = append(doc.Components, component)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func generateSPDX(lock *lockfile.Lockfile, workspaceName string, now time.Time) ([]byte, error) {
	doc := spdxDocument{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXID:            "SPDXRef-DOCUMENT",
		Name:              workspaceName,
		DocumentNamespace: fmt.Sprintf("https://spdx.org/spdxdocs/%v-%v", workspaceName, uuid.NewString()),
	}
	doc.CreationInfo.Created = now.UTC().Format(time.RFC3339)
	doc.CreationInfo.Creators = []string{"Tool: rcm"}

	doc.Packages = []spdxPackage{}
	for i, pkg := range lock.Packages {
		entry := spdxPackage{
			SPDXID:           fmt.Sprintf("SPDXRef-Package-%v", i),
			Name:             pkg.Name,
			VersionInfo:      pkg.Version,
			DownloadLocation: "NOASSERTION",
		}
		if pkg.Resolved != "" {
			entry.DownloadLocation = pkg.Resolved
		}
		entry.ExternalRefs = []struct {
			ReferenceCategory string `json:"referenceCategory"`
			ReferenceType     string `json:"referenceType"`
			ReferenceLocator  string `json:"referenceLocator"`
		}{{
			ReferenceCategory: "PACKAGE-MANAGER",
			ReferenceType:     "purl",
			ReferenceLocator:  Purl(pkg),
		}}
		doc.Packages = append(doc.Packages, entry)
	}
	return json.MarshalIndent(doc, "", "  ")
}
