package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byusi/indexfo/internal/models"
	"github.com/byusi/indexfo/pkg/config"
	"github.com/byusi/indexfo/pkg/server"
)

const testTemplate = `<html><head><title>test-index</title></head><body>browser</body></html>`

type stubStats struct{}

func (stubStats) Stats() map[string]interface{} {
	return map[string]interface{}{"uptime": "1s"}
}

func setupTestServer(t *testing.T) (*server.Server, string) {
	dataRoot := t.TempDir()

	templateFile := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(templateFile, []byte(testTemplate), 0644))

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Data: config.DataConfig{
			Root:           dataRoot,
			TemplateFile:   templateFile,
			ProtectedPaths: []string{"/api/secret"},
		},
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	srv, err := server.New(cfg, logger, stubStats{})
	require.NoError(t, err, "Failed to create server")
	return srv, srv.Resolver().Root()
}

func doRequest(t *testing.T, srv *server.Server, method, target string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rr, req)
	return rr
}

func TestIndex_NoPath(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "test-index")
	assert.NotContains(t, rr.Body.String(), "initialPathFromURL")
}

func TestIndex_PathInjection(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/?path=sub/dir")

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `const initialPathFromURL = "sub/dir";`)
	// Injection lands before the closing head tag.
	assert.Less(t, strings.Index(body, "initialPathFromURL"), strings.Index(body, "</head>"))
}

func TestIndex_PathInjectionEscaping(t *testing.T) {
	srv, _ := setupTestServer(t)

	hostile := "a\"b\nc'd\\e"
	rr := doRequest(t, srv, http.MethodGet, "/?path="+url.QueryEscape(hostile))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `const initialPathFromURL = "a\"b\nc\'d\\e";`)

	// The script string must not contain a raw newline or unescaped quote.
	start := strings.Index(body, `initialPathFromURL = "`)
	require.GreaterOrEqual(t, start, 0)
	literal := body[start+len(`initialPathFromURL = "`):]
	literal = literal[:strings.Index(literal, `";`)]
	assert.NotContains(t, literal, "\n")
	assert.NotContains(t, strings.ReplaceAll(literal, `\"`, ""), `"`)
}

func TestAPIFiles_ListsSubdirectory(t *testing.T) {
	srv, dataRoot := setupTestServer(t)

	sub := filepath.Join(dataRoot, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "hello.txt"), []byte("hello"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(sub, "nested"), 0755))

	rr := doRequest(t, srv, http.MethodGet, "/api/files?path=sub")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	var listing models.DirectoryListing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listing))

	assert.Equal(t, 1, listing.FileCount)
	assert.Equal(t, 1, listing.FolderCount)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, "sub/hello.txt", listing.Files[0].Path)
	require.Len(t, listing.Folders, 1)
	assert.Equal(t, "sub/nested", listing.Folders[0].Path)
	assert.Equal(t, "sub", listing.CurrentPath)
	assert.Equal(t, "", listing.ParentPath)
}

func TestAPIFiles_MissingDirectory(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/files?path=no/such/dir")

	assert.Equal(t, http.StatusOK, rr.Code)

	var listing models.DirectoryListing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listing))

	assert.Equal(t, 0, listing.FileCount)
	assert.Equal(t, 0, listing.FolderCount)
	assert.Equal(t, "0 B", listing.TotalSize)
	assert.Equal(t, "no/such", listing.ParentPath)
	assert.NotNil(t, listing.Files)
	assert.NotNil(t, listing.Folders)
}

func TestAPINavigate_AliasOfFiles(t *testing.T) {
	srv, dataRoot := setupTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataRoot, "a.txt"), []byte("x"), 0644))

	filesRR := doRequest(t, srv, http.MethodGet, "/api/files")
	navRR := doRequest(t, srv, http.MethodGet, "/api/navigate")

	assert.Equal(t, http.StatusOK, navRR.Code)
	assert.JSONEq(t, filesRR.Body.String(), navRR.Body.String())
}

func TestAPIStats(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/stats")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "1s", resp["uptime"])
}

func TestAPIStats_NoProvider(t *testing.T) {
	srv, _ := setupTestServer(t)

	cfg := &config.Config{
		Data: config.DataConfig{
			Root:         srv.Resolver().Root(),
			TemplateFile: "missing.html",
		},
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	bare, err := server.New(cfg, logger, nil)
	require.NoError(t, err)

	rr := doRequest(t, bare, http.MethodGet, "/api/stats")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestDownload_Success(t *testing.T) {
	srv, dataRoot := setupTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataRoot, "hello.txt"), []byte("hello world"), 0644))

	rr := doRequest(t, srv, http.MethodGet, "/download/hello.txt")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello world", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "hello.txt")
}

func TestDownload_TraversalRejected(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/download/../../etc/passwd")

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, rr.Body.String(), "root")
}

func TestDownload_Directory(t *testing.T) {
	srv, dataRoot := setupTestServer(t)
	require.NoError(t, os.Mkdir(filepath.Join(dataRoot, "docs"), 0755))

	rr := doRequest(t, srv, http.MethodGet, "/download/docs")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownload_Missing(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/download/nope.bin")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProtectedPath(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/secret")

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAPIUnknown(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/whatever")

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "API endpoint not found", resp["error"])
}

func TestContent_File(t *testing.T) {
	srv, dataRoot := setupTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataRoot, "style.css"), []byte("body{}"), 0644))

	rr := doRequest(t, srv, http.MethodGet, "/style.css")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "body{}", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")
}

func TestContent_DirectoryServesIndex(t *testing.T) {
	srv, dataRoot := setupTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dataRoot, "docs", "guides"), 0755))

	rr := doRequest(t, srv, http.MethodGet, "/docs/guides")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `const initialPathFromURL = "docs/guides";`)
}

func TestContent_Missing(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/no-such-file.txt")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContent_TraversalRejected(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/../../etc/passwd")

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestFallback_MethodNotAllowed(t *testing.T) {
	srv, _ := setupTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/anything")

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMissingTemplate_FallbackPage(t *testing.T) {
	cfg := &config.Config{
		Data: config.DataConfig{
			Root:         t.TempDir(),
			TemplateFile: filepath.Join(t.TempDir(), "absent.html"),
		},
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	srv, err := server.New(cfg, logger, nil)
	require.NoError(t, err)

	rr := doRequest(t, srv, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "System error")
}
