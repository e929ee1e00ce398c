package merge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// staging collects output files written to temporary names next to their
// destinations. Nothing becomes visible until commit renames them all.
type staging struct {
	files []stagedFile
}

type stagedFile struct {
	tmp, dst string
}

// write creates a temp file in dst's directory and fills it with fn.
func (s *staging) write(dst string, fn func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", dst, err)
	}

	s.files = append(s.files, stagedFile{tmp: f.Name(), dst: dst})
	return nil
}

// commit renames every staged file into place, in staging order. A failed
// rename leaves the files before it committed and removes the rest.
func (s *staging) commit() error {
	for i, sf := range s.files {
		if err := os.Rename(sf.tmp, sf.dst); err != nil {
			s.files = s.files[i:]
			return multierr.Append(fmt.Errorf("renaming %s: %w", sf.dst, err), s.abort())
		}
	}
	s.files = nil
	return nil
}

// abort removes every staged file that was not committed.
func (s *staging) abort() error {
	var err error
	for _, sf := range s.files {
		if e := os.Remove(sf.tmp); e != nil && !os.IsNotExist(e) {
			err = multierr.Append(err, e)
		}
	}
	s.files = nil
	return err
}
