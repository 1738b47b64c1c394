// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/jeranaias/bookshelf-tui/internal/record"
)

// maxXMLSize bounds how much of container.xml or the package document is read.
const maxXMLSize = 4 << 20

var (
	errNoContainer = errors.New("missing META-INF/container.xml")
	errNoRootFile  = errors.New("container lists no package document")
)

type epubContainer struct {
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Metadata opfMetadata `xml:"metadata"`
}

type opfMetadata struct {
	Titles       []string        `xml:"title"`
	Creators     []opfCreator    `xml:"creator"`
	Descriptions []string        `xml:"description"`
	Languages    []string        `xml:"language"`
	Identifiers  []opfIdentifier `xml:"identifier"`
	Metas        []opfMeta       `xml:"meta"`
}

type opfCreator struct {
	Name string `xml:",chardata"`
	Role string `xml:"role,attr"`
}

type opfIdentifier struct {
	Value  string `xml:",chardata"`
	Scheme string `xml:"scheme,attr"`
}

type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	ID       string `xml:"id,attr"`
	Value    string `xml:",chardata"`
}

// epubMetadata is what readEPUB pulls out of the package document.
type epubMetadata struct {
	Title       string
	Authors     []string
	Description string
	Language    string
	Identifier  string
	ISBN        string
	Series      *record.Series
}

func readEPUB(name string) (*epubMetadata, error) {
	r, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var container epubContainer
	if err := decodeEntry(&r.Reader, "META-INF/container.xml", &container); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoContainer, err)
	}
	opfPath := ""
	for _, rf := range container.RootFiles {
		if rf.FullPath != "" && (rf.MediaType == "" || rf.MediaType == "application/oebps-package+xml") {
			opfPath = path.Clean(strings.TrimPrefix(rf.FullPath, "/"))
			break
		}
	}
	if opfPath == "" {
		return nil, errNoRootFile
	}

	var pkg opfPackage
	if err := decodeEntry(&r.Reader, opfPath, &pkg); err != nil {
		return nil, fmt.Errorf("package document %s: %w", opfPath, err)
	}
	return pkg.Metadata.extract(), nil
}

func decodeEntry(r *zip.Reader, name string, v any) error {
	f, err := r.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := xml.NewDecoder(io.LimitReader(f, maxXMLSize))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	return dec.Decode(v)
}

func (m *opfMetadata) extract() *epubMetadata {
	out := &epubMetadata{
		Title:       firstNonEmpty(m.Titles),
		Description: firstNonEmpty(m.Descriptions),
		Language:    firstNonEmpty(m.Languages),
	}

	// Authors are creators with role "aut" or no role; other roles
	// (editors, illustrators) count only when nobody is marked author.
	var others []string
	for _, c := range m.Creators {
		name := UnravelAuthor(c.Name)
		if name == "" {
			continue
		}
		if c.Role == "" || strings.EqualFold(c.Role, "aut") {
			out.Authors = append(out.Authors, name)
		} else {
			others = append(others, name)
		}
	}
	if len(out.Authors) == 0 {
		out.Authors = others
	}

	for _, id := range m.Identifiers {
		value, scheme := normalizeIdentifier(id)
		if value == "" {
			continue
		}
		if scheme == "isbn" && out.ISBN == "" {
			out.ISBN = value
		}
		if out.Identifier == "" {
			if scheme != "" {
				out.Identifier = scheme + ":" + value
			} else {
				out.Identifier = value
			}
		}
	}

	out.Series = m.series()
	return out
}

// series reads calibre's series metas, then EPUB 3 collection metas.
func (m *opfMetadata) series() *record.Series {
	var name, index string
	for _, meta := range m.Metas {
		switch meta.Name {
		case "calibre:series":
			name = strings.TrimSpace(meta.Content)
		case "calibre:series_index":
			index = strings.TrimSpace(meta.Content)
		}
	}

	if name == "" {
		var collectionID string
		for _, meta := range m.Metas {
			if meta.Property == "belongs-to-collection" {
				name = strings.TrimSpace(meta.Value)
				collectionID = meta.ID
				break
			}
		}
		if name != "" && collectionID != "" {
			for _, meta := range m.Metas {
				if meta.Property == "group-position" && meta.Refines == "#"+collectionID {
					index = strings.TrimSpace(meta.Value)
				}
			}
		}
	}

	if name == "" {
		return nil
	}
	s := &record.Series{Name: name}
	if f, err := strconv.ParseFloat(index, 64); err == nil {
		s.Index = &f
	}
	return s
}

func normalizeIdentifier(id opfIdentifier) (value, scheme string) {
	value = strings.TrimSpace(id.Value)
	scheme = strings.ToLower(strings.TrimSpace(id.Scheme))
	lower := strings.ToLower(value)
	switch {
	case strings.HasPrefix(lower, "urn:isbn:"):
		value, scheme = value[len("urn:isbn:"):], "isbn"
	case strings.HasPrefix(lower, "isbn:"):
		value, scheme = value[len("isbn:"):], "isbn"
	case strings.HasPrefix(lower, "urn:uuid:"):
		value, scheme = value[len("urn:uuid:"):], "uuid"
	}
	if scheme == "isbn" {
		value = strings.ReplaceAll(strings.ReplaceAll(value, "-", ""), " ", "")
	}
	return value, scheme
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
