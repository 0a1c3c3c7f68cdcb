package server

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Index Fo - Error</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 50px; text-align: center; }
        .error { color: #FF0000; background: #ffe6e6; padding: 20px; border-radius: 10px; }
    </style>
</head>
<body>
    <div class="error">
        <h1>System error</h1>
        <p>The interface template could not be loaded. Check that the template file exists.</p>
    </div>
</body>
</html>`

// loadTemplate reads the SPA template once at startup. A missing or
// unreadable template downgrades to a built-in page so the server can still
// start; the template is never re-read per request.
func loadTemplate(path string, logger *logrus.Logger) string {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warnf("Failed to load HTML template %s: %v", path, err)
		return fallbackHTML
	}
	return string(content)
}

// injectInitialPath embeds the shared path into the page as a script-visible
// variable, inserted just before the closing head tag. An empty path leaves
// the template untouched.
func injectInitialPath(page, path string) string {
	if path == "" {
		return page
	}
	script := fmt.Sprintf("<script>\n    const initialPathFromURL = \"%s\";\n</script>\n", escapeJSString(path))
	return strings.Replace(page, "</head>", script+"</head>", 1)
}

// escapeJSString escapes a value for embedding inside a double-quoted
// JavaScript string literal.
func escapeJSString(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`'`, `\'`,
		"\n", `\n`,
		"\r", `\r`,
	)
	return replacer.Replace(s)
}

// errorPage renders the 500 response body.
func errorPage(detail string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Index Fo - Error</title></head>
<body>
    <h1>Internal server error</h1>
    <p>%s</p>
</body>
</html>`, html.EscapeString(detail))
}
