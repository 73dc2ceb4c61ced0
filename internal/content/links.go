package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// isWebURL accepts absolute http and https URLs with a host. Schema fields
// holding outbound links use it so a typo or a javascript: link fails the
// index instead of reaching a page.
func isWebURL(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	if strings.ContainsAny(raw, " \t\r\n\"<>`") {
		return errors.New("must not contain whitespace, quotes or angle brackets")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("must use http or https, not %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}
