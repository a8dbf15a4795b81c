// Package redirect generates small HTML pages that forward the browser to
// another URL.
package redirect

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"text/template"
)

// Filename is the default name of an uploaded redirect page
const Filename = "redirect.html"

// ErrInvalidURL is returned for targets that are not absolute http(s) URLs
var ErrInvalidURL = errors.New("redirect URL must start with http:// or https://")

const page = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta http-equiv="refresh" content="0; url=%[1]s">
    <title>Redirect</title>
    <script>window.location.href = "%[2]s";</script>
</head>
<body>
    <p>Redirecting you to <a href="%[1]s">%[1]s</a></p>
</body>
</html>
`

// Validate checks that target is an absolute http or https URL
func Validate(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// Page renders the redirect page for target
func Page(target string) ([]byte, error) {
	u, err := Validate(target)
	if err != nil {
		return nil, err
	}
	target = u.String()
	return fmt.Appendf(nil, page, html.EscapeString(target), template.JSEscapeString(target)), nil
}
