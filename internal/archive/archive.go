// Package archive extracts text files from ZIP archives for chunking.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"

	"zipdex/internal/contextutil"
)

// File is one extracted archive member, already decoded to text.
type File struct {
	// Path is the slash-separated path inside the archive.
	Path string
	// Content is the member's raw text. Invalid UTF-8 is carried through
	// untouched; chunking treats content as opaque bytes.
	Content string
}

// ExtractZip reads every regular file from the archive at path, in archive
// order. Hidden entries (any dot-prefixed path component) and files that
// are blank after trimming are skipped. Errors on individual members are
// logged and skipped; only failure to open the archive is returned.
func ExtractZip(ctx context.Context, path string) ([]File, error) {
	logger := contextutil.LoggerFromContext(ctx)

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var files []File
	for _, member := range reader.File {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if member.FileInfo().IsDir() {
			continue
		}
		if hasHiddenComponent(member.Name) {
			logger.DebugContext(ctx, "skipping hidden entry", "path", member.Name)
			continue
		}

		content, err := readMember(member)
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable entry", "path", member.Name, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			logger.DebugContext(ctx, "skipping empty entry", "path", member.Name)
			continue
		}

		files = append(files, File{Path: member.Name, Content: content})
	}
	return files, nil
}

func readMember(member *zip.File) (string, error) {
	rc, err := member.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open member: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read member: %w", err)
	}
	return string(data), nil
}

// hasHiddenComponent reports whether any path component starts with a dot.
func hasHiddenComponent(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
