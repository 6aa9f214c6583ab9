package httpclient

import (
	"bytes"
	"io"
	"net/http"
)

// BodySource produces replayable request bodies.
type BodySource interface {
	NewReader() (io.ReadCloser, error)
	ContentLength() (int64, bool)
}

// NewBodySource returns a source for the encoded form, or an empty source
// when form is nil.
func NewBodySource(form *Form) BodySource {
	if form == nil {
		return emptyBodySource{}
	}
	return &inlineBodySource{data: []byte(form.Encode())}
}

type inlineBodySource struct {
	data []byte
}

func (s *inlineBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *inlineBodySource) ContentLength() (int64, bool) {
	return int64(len(s.data)), true
}

type emptyBodySource struct{}

func (emptyBodySource) NewReader() (io.ReadCloser, error) {
	return http.NoBody, nil
}

func (emptyBodySource) ContentLength() (int64, bool) {
	return 0, true
}
