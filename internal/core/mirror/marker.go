package mirror

import "strings"

// markerPrefix starts the back-link line embedded in every mirrored post.
// The full line is the dedup marker: a post whose body contains the marker for
// an issue URL is that issue's mirror.
const markerPrefix = "Originally reported at: "

// Marker returns the back-link line for a source issue URL.
func Marker(sourceURL string) string {
	return markerPrefix + sourceURL
}

// ExtractMarker scans a post body for a back-link line and returns the source
// issue URL it encodes.
func ExtractMarker(body string) (string, bool) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, markerPrefix) {
			url := strings.TrimSpace(strings.TrimPrefix(line, markerPrefix))
			if url != "" {
				return url, true
			}
		}
	}
	return "", false
}
