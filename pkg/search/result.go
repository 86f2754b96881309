package search

import (
	"fmt"
	"strconv"
	"strings"

	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/store"
)

const (
	gcsScheme         = "gs://"
	authenticatedHost = "https://storage.mtls.cloud.google.com/"
)

// AuthenticatedURL rewrites gs://bucket/path to its browser-reachable HTTPS
// form. Anything that is not a gs:// URI comes back unchanged with a warning.
func AuthenticatedURL(uri string, log logger.ILogger) string {
	if uri == "" {
		return ""
	}
	if !strings.HasPrefix(uri, gcsScheme) {
		log.Warn("DocumentSearch", "URI is not a GCS URI, returning as is", map[string]interface{}{"uri": uri})
		return uri
	}
	return authenticatedHost + strings.TrimPrefix(uri, gcsScheme)
}

// ParseDerivedData builds a Document from a search result's derived_struct_data.
func ParseDerivedData(derived map[string]interface{}, log logger.ILogger) store.Document {
	var snippets []string
	for _, item := range asSlice(derived["snippets"]) {
		if m, ok := item.(map[string]interface{}); ok {
			snippets = append(snippets, asString(m["snippet"]))
		}
	}

	segments := asSlice(derived["extractive_segments"])
	pageNumber := 1
	contents := make([]string, 0, len(segments))
	for i, item := range segments {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if i == 0 {
			if n, ok := asInt(m["pageNumber"]); ok {
				pageNumber = n
			}
		}
		contents = append(contents, asString(m["content"]))
	}

	link := AuthenticatedURL(asString(derived["link"]), log)

	return store.Document{
		Title:          asString(derived["title"]),
		Link:           link,
		LinkWithPage:   fmt.Sprintf("%s#page=%d", link, pageNumber),
		Snippets:       snippets,
		SegmentContent: strings.Join(contents, "\n"),
		PageNumber:     pageNumber,
	}
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asInt accepts both numeric and string page numbers; the index returns either.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
