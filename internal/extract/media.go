package extract

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/assignment-feedback/constants"
)

// DetectMediaType trusts a specific declared media type and sniffs the content otherwise.
func DetectMediaType(data []byte, declared string) string {
	d := strings.TrimSpace(declared)
	if d != "" && !strings.EqualFold(d, constants.MediaTypeOctet) {
		return d
	}
	if len(data) == 0 {
		return constants.MediaTypeOctet
	}
	return mimetype.Detect(data).String()
}
