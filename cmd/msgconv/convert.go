package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-msg/msg"
)

func convertFlags(fs *pflag.FlagSet) {
	fs.StringP("output-dir", "o", "", "output directory (default: next to each input)")
	fs.Bool("overwrite", false, "replace existing .eml files")
	fs.IntP("workers", "j", 0, "parallel conversions (default: number of CPUs)")
	fs.Bool("raw-rtf", false, "attach the decompressed RTF body as application/rtf")
}

func runConvert(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() == 0 {
		return errors.New("no input files")
	}

	if dir := e.cfg.Output.Dir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	var jobs []msg.Job
	for _, src := range fs.Args() {
		dst := outputPath(src, e.cfg.Output.Dir)
		if !e.cfg.Output.Overwrite {
			if _, err := os.Stat(dst); err == nil {
				e.logger.Warn("skipping existing output", "src", src, "dst", dst)
				continue
			}
		}
		jobs = append(jobs, msg.Job{Src: src, Dst: dst})
	}

	err := msg.ConvertMany(ctx, jobs, e.cfg.Convert.Workers, e.opts...)
	e.logger.Info("conversion finished", "files", len(jobs), "failed", countErrors(err))
	return err
}

// outputPath maps a.msg to a.eml in dir, or beside src when dir is empty.
func outputPath(src, dir string) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".eml"
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, base)
}

func countErrors(err error) int {
	if err == nil {
		return 0
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	return 1
}
