package client

import (
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
)

// utf8Body converts a response body to UTF-8 when its Content-Type declares another
// charset. Bodies without a declared charset are JSON and already UTF-8.
func utf8Body(body io.Reader, contentType string) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	label := strings.ToLower(strings.TrimSpace(params["charset"]))
	if label == "" || label == "utf-8" || label == "utf8" {
		return body, nil
	}
	return charset.NewReaderLabel(label, body)
}
