package file

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

const uuidLen = 36

// MakeBlobName builds the staging name "<id>-<uuid><ext>".
func MakeBlobName(id, ext string) string {
	return id + "-" + uuid.NewString() + ext
}

// ReferenceID recovers the external reference id from a staging blob name.
// "video123-<uuid>.mp4" gives "video123"; names without a uuid suffix give the
// part before the first '-'.
func ReferenceID(blobName string) string {
	name := strings.TrimSuffix(blobName, path.Ext(blobName))

	if len(name) > uuidLen+1 && name[len(name)-uuidLen-1] == '-' {
		if _, err := uuid.Parse(name[len(name)-uuidLen:]); err == nil {
			return name[:len(name)-uuidLen-1]
		}
	}

	if i := strings.Index(name, "-"); i > 0 {
		return name[:i]
	}
	return name
}
