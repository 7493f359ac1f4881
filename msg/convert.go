package msg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Convert assembles m and writes it to w.
func Convert(w io.Writer, m *Message, opts ...Option) error {
	e, err := Assemble(m, opts...)
	if err != nil {
		return err
	}
	_, err = e.WriteTo(w)
	return err
}

// ConvertFile converts the .msg file src into the RFC 5322 file dst. dst
// is replaced atomically; on failure it is left untouched.
func ConvertFile(src, dst string, opts ...Option) error {
	f, err := Open(src, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".msgconv-*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Convert(tmp, f.Message(), opts...); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Job is one conversion of ConvertMany.
type Job struct {
	Src string
	Dst string
}

// ConvertMany runs ConvertFile for each job with at most workers
// conversions in flight (runtime.NumCPU() when workers <= 0). Every job is
// attempted; failures are joined into the returned error, each prefixed
// with its source path. Cancelling ctx stops jobs that have not started.
func ConvertMany(ctx context.Context, jobs []Job, workers int, opts ...Option) error {
	if len(jobs) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	errs := make([]error, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := ConvertFile(job.Src, job.Dst, opts...); err != nil {
				errs[i] = fmt.Errorf("%s: %w", job.Src, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}
