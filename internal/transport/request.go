package transport

import (
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/logging"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// ReadBody reads and closes resp.Body. Any non-200 status becomes a
// FetchError attributed to source.
func ReadBody(resp *http.Response, source string) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetchError(source, resp.StatusCode, "reading response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = truncate(msg, maxErrorBody) + "..."
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		fetchErr := errors.NewFetchError(source, resp.StatusCode, msg, nil)
		if resp.Request != nil && resp.Request.URL != nil {
			fetchErr.URL = redact(resp.Request.URL.String())
		}
		return nil, fetchErr
	}

	return body, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// redact drops the query string, which may carry tokens.
func redact(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
