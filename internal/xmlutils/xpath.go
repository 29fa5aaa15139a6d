// Package xmlutils provides XML-related utility functions used throughout the application.
package xmlutils

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/net/html/charset"
	"gopkg.in/xmlpath.v2"
)

var pathCache sync.Map

// LoadXMLFile loads an XML file and returns the XML root node. The encoding
// declared in the prolog (UTF-8, ISO-8859-1, windows-1252...) is honoured.
func LoadXMLFile(xmlFilePath string) (*xmlpath.Node, error) {
	file, err := os.Open(xmlFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XML file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ParseReader(file)
}

// ParseReader parses raw XML bytes, converting from the declared charset.
func ParseReader(r io.Reader) (*xmlpath.Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	root, err := xmlpath.ParseDecoder(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// ParseString parses XML that is already decoded text, such as a document
// embedded in another one. Any encoding declared in its prolog is ignored.
func ParseString(text string) (*xmlpath.Node, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "\ufeff")

	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	root, err := xmlpath.ParseDecoder(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

func compile(xpath string) *xmlpath.Path {
	if cached, ok := pathCache.Load(xpath); ok {
		return cached.(*xmlpath.Path)
	}
	path := xmlpath.MustCompile(xpath)
	pathCache.Store(xpath, path)
	return path
}

// First returns the first node matching xpath.
func First(node *xmlpath.Node, xpath string) (*xmlpath.Node, bool) {
	if node == nil {
		return nil, false
	}
	iter := compile(xpath).Iter(node)
	if !iter.Next() {
		return nil, false
	}
	return iter.Node(), true
}

// Value returns the trimmed text of the first node matching xpath, or "".
func Value(node *xmlpath.Node, xpath string) string {
	if node == nil {
		return ""
	}
	value, ok := compile(xpath).String(node)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// RawValue returns the untrimmed text of the first node matching xpath.
func RawValue(node *xmlpath.Node, xpath string) (string, bool) {
	if node == nil {
		return "", false
	}
	return compile(xpath).String(node)
}

// Each calls fn for every node matching xpath, in document order.
func Each(node *xmlpath.Node, xpath string, fn func(*xmlpath.Node)) {
	if node == nil {
		return
	}
	iter := compile(xpath).Iter(node)
	for iter.Next() {
		fn(iter.Node())
	}
}
