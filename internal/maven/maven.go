// Package maven provides a metadata client for Maven2-layout
// repositories.
package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/git-pkgs/mvnwatch/client"
	"github.com/git-pkgs/mvnwatch/internal/core"
)

const DefaultURL = "https://repo1.maven.org/maven2"

// Repository fetches artifact version metadata from a Maven repository.
type Repository struct {
	baseURL string
	client  *client.Client
	urls    *client.BaseURLs
}

// New creates a repository client for the given base URL. An empty
// baseURL selects Maven Central.
func New(baseURL string, c *client.Client) *Repository {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if c == nil {
		c = client.DefaultClient()
	}
	r := &Repository{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  c,
	}
	r.urls = NewURLs(r.baseURL)
	return r
}

// BaseURL returns the repository base URL.
func (r *Repository) BaseURL() string {
	return r.baseURL
}

// URLs returns the URL builder for this repository.
func (r *Repository) URLs() client.URLBuilder {
	return r.urls
}

// metadata mirrors the maven-metadata.xml schema. Elements not listed
// here are ignored by the decoder, so schema additions do not break
// parsing.
type metadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest      string   `xml:"latest"`
		Release     string   `xml:"release"`
		Versions    []string `xml:"versions>version"`
		LastUpdated string   `xml:"lastUpdated"`
	} `xml:"versioning"`
}

// MetadataURL returns the maven-metadata.xml URL for a coordinate.
func (r *Repository) MetadataURL(c core.Coordinate) string {
	return fmt.Sprintf("%s/%s/%s/maven-metadata.xml", r.baseURL, c.GroupPath(), c.Artifact)
}

// FetchVersions retrieves the published versions for a coordinate.
// It returns (nil, nil) when the artifact has no published metadata
// yet; the caller is expected to poll again later. Any other failure,
// including a metadata document that does not parse, is a
// *core.FetchError.
func (r *Repository) FetchVersions(ctx context.Context, c core.Coordinate) (*core.VersionSet, error) {
	url := r.MetadataURL(c)

	var doc metadata
	if err := r.client.GetXML(ctx, url, &doc); err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, nil
		}
		return nil, &core.FetchError{Coordinate: c, URL: url, Err: err}
	}

	versions := doc.Versioning.Versions
	if len(versions) == 0 {
		// Metadata exists but nothing is published under it.
		return nil, nil
	}

	return &core.VersionSet{
		Latest:   releaseVersion(doc, versions),
		Versions: versions,
	}, nil
}

// releaseVersion picks the repository-designated release version,
// verbatim. <release> wins over <latest>; with neither present the
// last listed version is used.
func releaseVersion(doc metadata, versions []string) string {
	if doc.Versioning.Release != "" {
		return doc.Versioning.Release
	}
	if doc.Versioning.Latest != "" {
		return doc.Versioning.Latest
	}
	return versions[len(versions)-1]
}

func splitName(name string) (group, artifact string) {
	parts := strings.SplitN(name, ":", 2)
	if len(parts) != 2 {
		return "", name
	}
	return parts[0], parts[1]
}

// NewURLs builds the URL set for a Maven2-layout repository rooted at
// baseURL.
func NewURLs(baseURL string) *client.BaseURLs {
	return &client.BaseURLs{
		RegistryFn: func(name, version string) string {
			group, artifact := splitName(name)
			return fmt.Sprintf("https://search.maven.org/artifact/%s/%s/%s/jar", group, artifact, version)
		},
		DownloadFn: func(name, version string) string {
			group, artifact := splitName(name)
			groupPath := strings.ReplaceAll(group, ".", "/")
			return fmt.Sprintf("%s/%s/%s/%s/%s-%s.jar", baseURL, groupPath, artifact, version, artifact, version)
		},
		DocumentationFn: func(name, version string) string {
			group, artifact := splitName(name)
			return fmt.Sprintf("https://javadoc.io/doc/%s/%s/%s", group, artifact, version)
		},
		PURLFn: func(name, version string) string {
			group, artifact := splitName(name)
			if version != "" {
				return fmt.Sprintf("pkg:maven/%s/%s@%s", group, artifact, version)
			}
			return fmt.Sprintf("pkg:maven/%s/%s", group, artifact)
		},
	}
}
