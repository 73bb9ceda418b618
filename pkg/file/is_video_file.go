package file

import (
	"path/filepath"
	"strings"
)

// mezzanineExtensions are the containers the encoder accepts as input.
var mezzanineExtensions = map[string]struct{}{
	".mp4": {}, ".m4v": {}, ".mov": {}, ".avi": {},
	".mkv": {}, ".mxf": {}, ".ts": {}, ".wmv": {},
}

// IsVideoFile reports whether name has a container extension the encoder
// takes. Uploads with other extensions are still staged, only logged.
func IsVideoFile(name string) bool {
	_, ok := mezzanineExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
