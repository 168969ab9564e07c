package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id for externally visible references
// (checkout client references, object keys). Database rows use bigserial.
func New() string {
	return ksuid.New().String()
}
