package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-msg/msg"
)

func extractFlags(fs *pflag.FlagSet) {
	fs.StringP("output-dir", "o", ".", "directory to write attachments to")
	fs.Bool("overwrite", false, "replace existing files instead of renaming")
}

func runExtract(_ context.Context, e *env, flags *pflag.FlagSet) error {
	path, err := single(flags)
	if err != nil {
		return err
	}
	dir := e.cfg.Output.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := msg.Open(path, e.opts...)
	if err != nil {
		return err
	}
	defer f.Close()
	m := f.Message()

	for _, a := range m.Attachments {
		if a.Data == nil {
			e.logger.Warn("attachment has no data", "name", a.Filename, "method", a.Method)
			continue
		}
		dst, err := writeUnique(dir, a.Filename, a.Data, e.cfg.Output.Overwrite)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, dst)
	}
	for _, sub := range m.Messages {
		data, err := embeddedBytes(sub, e)
		if err != nil {
			e.logger.Warn("skipping embedded message", "subject", sub.Subject, "error", err)
			continue
		}
		dst, err := writeUnique(dir, sub.Subject+".eml", data, e.cfg.Output.Overwrite)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, dst)
	}
	return nil
}

func embeddedBytes(m *msg.Message, e *env) ([]byte, error) {
	em, err := msg.Assemble(m, e.opts...)
	if err != nil {
		return nil, err
	}
	return em.Bytes()
}

// safeJoin joins a sanitized file name to dir, refusing names that would
// escape it.
func safeJoin(dir, name string) (string, error) {
	name = msg.SanitizeFilename(filepath.Base(filepath.Clean("/" + name)))
	dst := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("attachment name %q escapes output directory", name)
	}
	return dst, nil
}

// writeUnique writes data under name in dir. Unless overwrite is set an
// existing file is kept and "name (n).ext" is used instead.
func writeUnique(dir, name string, data []byte, overwrite bool) (string, error) {
	dst, err := safeJoin(dir, name)
	if err != nil {
		return "", err
	}
	if overwrite {
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", dst, err)
		}
		return dst, nil
	}

	ext := filepath.Ext(dst)
	stem := strings.TrimSuffix(dst, ext)
	for n := 1; ; n++ {
		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			dst = fmt.Sprintf("%s (%d)%s", stem, n, ext)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("writing %s: %w", dst, err)
		}
		_, err = out.Write(data)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return "", fmt.Errorf("writing %s: %w", dst, err)
		}
		return dst, nil
	}
}
