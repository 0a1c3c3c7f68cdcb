package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/byusi/indexfo/pkg/fsindex"
)

// handleIndex serves the SPA, optionally seeding it with a shared path from
// the `path` query parameter.
func (s *Server) handleIndex(c *gin.Context) {
	s.serveIndex(c, c.Query("path"))
}

func (s *Server) serveIndex(c *gin.Context, targetPath string) {
	html := injectInitialPath(s.template, targetPath)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// handleFiles serves /api/files and /api/navigate. The two endpoints are
// aliases: both return the listing for the `path` query parameter.
func (s *Server) handleFiles(c *gin.Context) {
	listing, warnings := s.scanner.Scan(c.Query("path"))
	for _, w := range warnings {
		s.logger.WithFields(logrus.Fields{"path": w.Path}).Warnf("Skipping unreadable entry: %v", w.Err)
	}
	c.JSON(http.StatusOK, listing)
}

// handleStats serves host and process statistics. A missing provider yields
// a tagged error field, never a failed request.
func (s *Server) handleStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusOK, gin.H{"error": "system statistics provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, s.stats.Stats())
}

// handleDownload streams a file as an attachment after the same containment
// check as every other content path. Directories are never archived on the
// fly; they answer not-found.
func (s *Server) handleDownload(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")

	target, _, err := s.resolver.ResolveFile(rel)
	if err != nil {
		s.rejectResolve(c, rel, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(target)))
	c.Header("Content-Type", "application/octet-stream")
	c.File(target)
}

// fallbackRule pairs a path predicate with its handler. Rules are evaluated
// in declaration order; the first match wins.
type fallbackRule struct {
	name   string
	match  func(path string) bool
	handle gin.HandlerFunc
}

func (s *Server) fallbackRules() []fallbackRule {
	return []fallbackRule{
		{
			name: "api-not-found",
			match: func(p string) bool {
				return p == "/api" || strings.HasPrefix(p, "/api/")
			},
			handle: func(c *gin.Context) {
				c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			},
		},
		{
			name:   "content",
			match:  func(string) bool { return true },
			handle: s.handleContent,
		},
	}
}

// handleFallback dispatches requests that matched no registered route
// through the ordered fallback rule table.
func (s *Server) handleFallback(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}
	for _, rule := range s.fallback {
		if rule.match(c.Request.URL.Path) {
			rule.handle(c)
			return
		}
	}
}

// handleContent serves any remaining path: directories re-render the index
// with the path injected as the share parameter, regular files are streamed
// with their table MIME type.
func (s *Server) handleContent(c *gin.Context) {
	rel := strings.TrimPrefix(c.Request.URL.Path, "/")

	target, err := s.resolver.Resolve(rel)
	if err != nil {
		s.rejectResolve(c, rel, err)
		return
	}

	info, err := os.Stat(target)
	if err != nil {
		s.rejectResolve(c, rel, fsindex.ErrNotFound)
		return
	}

	if info.IsDir() {
		relPath, err := s.resolver.Rel(target)
		if err != nil {
			relPath = rel
		}
		s.serveIndex(c, relPath)
		return
	}

	if !info.Mode().IsRegular() {
		s.rejectResolve(c, rel, fsindex.ErrNotAFile)
		return
	}

	c.Header("Content-Type", fsindex.MimeType(filepath.Ext(target)))
	c.File(target)
}

// rejectResolve maps resolution failures onto client responses. The
// resolved absolute path is never echoed back.
func (s *Server) rejectResolve(c *gin.Context, rel string, err error) {
	switch {
	case errors.Is(err, fsindex.ErrPathTraversal):
		s.logger.Warnf("Blocked path traversal attempt: %s", rel)
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, fsindex.ErrNotFound), errors.Is(err, fsindex.ErrNotAFile), errors.Is(err, fsindex.ErrNotADirectory):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	default:
		s.logger.Errorf("Failed to resolve %s: %v", rel, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	}
}
