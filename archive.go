package datafy

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobeaver/datafy/filevalidator"
	"github.com/google/uuid"
	slogctx "github.com/veqryn/slog-context"
)

// extracted is an archive member written to the scratch directory.
type extracted struct {
	name string // cleaned path inside the archive
	path string // location on disk
	size int64
}

// expand writes every file member of a zip archive to a fresh scratch
// directory and resolves each in listing order. The scratch directory is
// removed before expand returns, on success and on failure.
func (r *Resolver) expand(ctx context.Context, src source, b *blob, opts *Options, sel MemberSelector, depth int) (items []ResolvedItem, err error) {
	if limit := r.cfg.MaxArchiveDepth; limit > 0 && depth >= limit {
		return nil, r.unsafeArchive(src, fmt.Errorf("nested deeper than %d archives", limit))
	}
	if err := b.load(); err != nil {
		return nil, err
	}
	if r.validator != nil {
		if verr := r.validator.ValidateContent(bytes.NewReader(b.data), int64(len(b.data))); verr != nil {
			return nil, r.unsafeArchive(src, verr)
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(b.data), int64(len(b.data)))
	if errors.Is(err, zip.ErrInsecurePath) {
		return nil, r.unsafeArchive(src, err)
	}
	if err != nil {
		return nil, &DecodeError{Tag: TagZip, SourcePath: src.sourcePath(), Err: err}
	}

	dir, err := r.scratchDir()
	if err != nil {
		return nil, err
	}
	log := slogctx.FromCtx(ctx)
	log.Debug("expanding archive", "source_path", src.sourcePath(), "members", len(zr.File), "scratch", dir)

	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warn("scratch cleanup failed", "dir", dir, "error", rmErr)
			if err == nil {
				items = nil
				err = &PathError{Op: "cleanup", Path: dir, Err: rmErr}
			}
		}
	}()

	members, err := r.extractAll(src, zr, dir)
	if err != nil {
		return nil, err
	}

	items = make([]ResolvedItem, 0, len(members))
	for _, m := range members {
		member := &Member{
			Path: memberSourcePath(src.sourcePath(), m.name),
			Name: path.Base(m.name),
			Tag:  ExtensionTag(m.name),
			Size: m.size,
		}
		if !selects(sel, member) {
			log.Debug("member skipped", "source_path", member.Path)
			continue
		}

		ms := &localSource{path: m.path, member: member.Path, response: b.response}
		mb, err := ms.read(ctx, r)
		if err != nil {
			return nil, err
		}

		resolved, err := r.handle(ctx, ms, mb, member.Tag, opts.Encoding, opts, sel, depth+1)
		if err != nil {
			return nil, err
		}
		items = append(items, resolved...)
	}
	return items, nil
}

// extractAll writes every file member below dir. Directory entries are
// skipped; every member is extracted, selected or not, so that multi-file
// formats find their sidecar files.
func (r *Resolver) extractAll(src source, zr *zip.Reader, dir string) ([]extracted, error) {
	members := make([]extracted, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if filevalidator.IsDangerousPath(f.Name) {
			return nil, r.unsafeArchive(src, fmt.Errorf("member %q escapes the extraction directory", f.Name))
		}

		name := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
		dest := filepath.Join(dir, filepath.FromSlash(name))
		if err := extractFile(f, dest); err != nil {
			return nil, &PathError{Op: "extract", Path: name, Err: err}
		}
		members = append(members, extracted{
			name: name,
			path: dest,
			size: int64(f.UncompressedSize64), //nolint:gosec // bounded by the archive validator
		})
	}
	return members, nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil { //nolint:gosec // size checked by the archive validator
		out.Close()
		return err
	}
	return out.Close()
}

// scratchDir creates a uniquely named directory under the configured
// scratch base.
func (r *Resolver) scratchDir() (string, error) {
	base := r.cfg.ScratchDir
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", &PathError{Op: "mkdir", Path: base, Err: err}
	}

	dir := filepath.Join(base, "datafy-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", &PathError{Op: "mkdir", Path: dir, Err: err}
	}
	return dir, nil
}

func (r *Resolver) unsafeArchive(src source, err error) error {
	return &DecodeError{
		Tag:        TagZip,
		SourcePath: src.sourcePath(),
		Err:        fmt.Errorf("%w: %w", ErrUnsafeArchive, err),
	}
}
