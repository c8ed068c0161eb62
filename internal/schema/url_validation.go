package schema

import (
	"fmt"
	neturl "net/url"
	"strings"
)

func validateURLString(raw string) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		return fmt.Errorf("expected URL")
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return fmt.Errorf("invalid URL format")
	}

	parsed, err := neturl.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL format")
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("URL must include a scheme (e.g., https://)")
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "ftp":
		if parsed.Host == "" {
			return fmt.Errorf("URL must include a host")
		}
	default:
		if parsed.Host == "" && parsed.Opaque == "" && parsed.Path == "" {
			return fmt.Errorf("URL is missing a target")
		}
	}

	return nil
}

// splitExternalLink unpacks "[https://example.org label]" into its URL and label.
// Text that is not bracketed is returned as the URL.
func splitExternalLink(value string) (url, label string) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") || strings.HasPrefix(value, "[[") {
		return value, ""
	}
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if i := strings.IndexAny(inner, " \t"); i >= 0 {
		return inner[:i], strings.TrimSpace(inner[i+1:])
	}
	return inner, ""
}
