package search

import (
	"testing"

	"datasense-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/protobuf/types/known/structpb"
)

func observedLogger() (*logger.ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewFromZap(zap.New(core)), logs
}

func TestAuthenticatedURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		wantWarn bool
	}{
		{name: "gcs uri", in: "gs://bucket/path/file.mp4", want: "https://storage.mtls.cloud.google.com/bucket/path/file.mp4"},
		{name: "only first scheme replaced", in: "gs://bucket/gs://x", want: "https://storage.mtls.cloud.google.com/bucket/gs://x"},
		{name: "https passthrough", in: "https://example.com/a.pdf", want: "https://example.com/a.pdf", wantWarn: true},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observedLogger()
			assert.Equal(t, tt.want, AuthenticatedURL(tt.in, log))

			warnings := logs.FilterLevelExact(zapcore.WarnLevel).Len()
			if tt.wantWarn {
				assert.Equal(t, 1, warnings)
			} else {
				assert.Zero(t, warnings)
			}
		})
	}
}

func TestParseDerivedData(t *testing.T) {
	derived, err := structpb.NewStruct(map[string]interface{}{
		"title": "Dog Adoption Guide",
		"link":  "gs://docs/guides/dogs.pdf",
		"snippets": []interface{}{
			map[string]interface{}{"snippet": "Labradors are friendly"},
			map[string]interface{}{"snippet": "Beagles are curious"},
		},
		"extractive_segments": []interface{}{
			map[string]interface{}{"pageNumber": "3", "content": "Segment one"},
			map[string]interface{}{"pageNumber": "4", "content": "Segment two"},
		},
	})
	require.NoError(t, err)

	doc := ParseDerivedData(derived.AsMap(), logger.NewNopLogger())

	assert.Equal(t, "Dog Adoption Guide", doc.Title)
	assert.Equal(t, "https://storage.mtls.cloud.google.com/docs/guides/dogs.pdf", doc.Link)
	assert.Equal(t, "https://storage.mtls.cloud.google.com/docs/guides/dogs.pdf#page=3", doc.LinkWithPage)
	assert.Equal(t, 3, doc.PageNumber)
	assert.Equal(t, []string{"Labradors are friendly", "Beagles are curious"}, doc.Snippets)
	assert.Equal(t, "Segment one\nSegment two", doc.SegmentContent)
}

func TestParseDerivedData_Defaults(t *testing.T) {
	derived, err := structpb.NewStruct(map[string]interface{}{
		"title": "No segments",
		"link":  "gs://docs/a.pdf",
	})
	require.NoError(t, err)

	doc := ParseDerivedData(derived.AsMap(), logger.NewNopLogger())

	assert.Equal(t, 1, doc.PageNumber)
	assert.Equal(t, "https://storage.mtls.cloud.google.com/docs/a.pdf#page=1", doc.LinkWithPage)
	assert.Empty(t, doc.SegmentContent)
	assert.Empty(t, doc.Snippets)
}

func TestParseDerivedData_NumericPageNumber(t *testing.T) {
	derived, err := structpb.NewStruct(map[string]interface{}{
		"link":                "gs://docs/a.pdf",
		"extractive_segments": []interface{}{map[string]interface{}{"pageNumber": 7, "content": "x"}},
	})
	require.NoError(t, err)

	doc := ParseDerivedData(derived.AsMap(), logger.NewNopLogger())
	assert.Equal(t, 7, doc.PageNumber)
}
