package static

import _ "embed"

//go:embed index.html
var indexHTML []byte

// IndexHTML returns the embedded single-page client.
func IndexHTML() []byte {
	return indexHTML
}
