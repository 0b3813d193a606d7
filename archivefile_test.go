package archivefile

import (
	"archive/tar"
	stdzip "archive/zip"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/sorairolake/lzip-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// fileSpec describes one archive entry for the in-test builders.
type fileSpec struct {
	name string
	body string
	dir  bool
	link string // symlink target, tar only
}

// testSpecs is the member set most tests build their archives from. The
// order is the stored order backends must report.
var testSpecs = []fileSpec{
	{name: "hello.txt", body: "hello, world\n"},
	{name: "docs/", dir: true},
	{name: "docs/readme.md", body: "# readme\n"},
	{name: "docs/notes/todo.txt", body: "- nothing yet\n"},
}

func specNames(specs []fileSpec) []string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.name)
	}
	return names
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func buildZip(t *testing.T, specs []fileSpec) string {
	t.Helper()
	var buf bytes.Buffer
	zw := stdzip.NewWriter(&buf)
	for _, s := range specs {
		w, err := zw.Create(s.name)
		require.NoError(t, err)
		if !s.dir {
			_, err = w.Write([]byte(s.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return writeTemp(t, "test.zip", buf.Bytes())
}

func buildTarBytes(t *testing.T, specs []fileSpec) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	mtime := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	for _, s := range specs {
		hdr := &tar.Header{Name: s.name, Mode: 0o644, ModTime: mtime}
		switch {
		case s.dir:
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
		case s.link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = s.link
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(s.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(s.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func buildTar(t *testing.T, specs []fileSpec) string {
	t.Helper()
	return writeTemp(t, "test.tar", buildTarBytes(t, specs))
}

func TestOpenFileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "no-such.zip"))
	require.ErrorIs(t, err, ErrFileNotFound)

	// a directory is not an archive file either
	_, err = Open(t.TempDir())
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestOpenUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "notes.zip", []byte("just some text, extension lies\n"))
	_, err := Open(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "7z or rar")

	var archiveErr *ArchiveError
	require.ErrorAs(t, err, &archiveErr)
	assert.Equal(t, "open", archiveErr.Op)
}

func TestListMembers(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		format string
		build  func(*testing.T, []fileSpec) string
	}{
		{"zip", buildZip},
		{"tar", buildTar},
	} {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()

			a, err := Open(tc.build(t, testSpecs))
			require.NoError(t, err)
			defer a.Close()

			names, err := a.GetNames()
			require.NoError(t, err)
			assert.Equal(t, specNames(testSpecs), names)

			members, err := a.GetMembers()
			require.NoError(t, err)
			require.Len(t, members, len(testSpecs))
			for i, m := range members {
				assert.Equal(t, names[i], m.Name)
				assert.Equal(t, testSpecs[i].dir, m.IsDir, m.Name)
				assert.Equal(t, !testSpecs[i].dir, m.IsFile, m.Name)
				if !testSpecs[i].dir {
					assert.Equal(t, int64(len(testSpecs[i].body)), m.Size, m.Name)
				}
			}
		})
	}
}

func TestGetMember(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)
	defer a.Close()

	m, err := a.GetMember("docs/readme.md")
	require.NoError(t, err)
	assert.Equal(t, "docs/readme.md", m.Name)
	assert.Equal(t, "docs/readme.md", m.String())
	assert.True(t, m.IsFile)

	// refs resolve through Member and *Member too
	again, err := a.GetMember(m)
	require.NoError(t, err)
	assert.Equal(t, m, again)
	again, err = a.GetMember(&m)
	require.NoError(t, err)
	assert.Equal(t, m, again)

	_, err = a.GetMember("docs/missing.md")
	require.ErrorIs(t, err, ErrMemberNotFound)
	var archiveErr *ArchiveError
	require.ErrorAs(t, err, &archiveErr)
	assert.Equal(t, "docs/missing.md", archiveErr.Member)
	assert.Equal(t, a.Path(), archiveErr.Path)
}

func TestReadBytes(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		format string
		build  func(*testing.T, []fileSpec) string
	}{
		{"zip", buildZip},
		{"tar", buildTar},
	} {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()

			a, err := Open(tc.build(t, testSpecs))
			require.NoError(t, err)
			defer a.Close()

			data, err := a.ReadBytes("hello.txt")
			require.NoError(t, err)
			assert.Equal(t, []byte("hello, world\n"), data)

			// backslash spellings fall back to the stored slash name
			data, err = a.ReadBytes(`docs\readme.md`)
			require.NoError(t, err)
			assert.Equal(t, []byte("# readme\n"), data)

			_, err = a.ReadBytes("docs/")
			require.ErrorIs(t, err, ErrMemberNotAFile)

			_, err = a.ReadBytes("nope.txt")
			require.ErrorIs(t, err, ErrMemberNotFound)

			_, err = a.ReadBytes(12)
			require.ErrorIs(t, err, ErrBadMemberRef)
		})
	}
}

func TestBackslashMemberNameVerbatim(t *testing.T) {
	t.Parallel()

	// A member whose stored name literally contains a backslash must be
	// retrievable by the exact name GetNames reports.
	a, err := Open(buildZip(t, []fileSpec{
		{name: `weird\name.txt`, body: "backslash body\n"},
		{name: "plain.txt", body: "plain body\n"},
	}))
	require.NoError(t, err)
	defer a.Close()

	names, err := a.GetNames()
	require.NoError(t, err)
	require.Contains(t, names, `weird\name.txt`)

	m, err := a.GetMember(`weird\name.txt`)
	require.NoError(t, err)
	assert.Equal(t, `weird\name.txt`, m.Name)

	data, err := a.ReadBytes(`weird\name.txt`)
	require.NoError(t, err)
	assert.Equal(t, []byte("backslash body\n"), data)

	// The slash spelling is not a member and does not alias it.
	_, err = a.ReadBytes("weird/name.txt")
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestReadText(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)
	defer a.Close()

	text, err := a.ReadText("docs/readme.md")
	require.NoError(t, err)
	assert.Equal(t, "# readme\n", text)
}

func TestExtractSingleMember(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)
	defer a.Close()

	dest := t.TempDir()
	written, err := a.Extract("docs/notes/todo.txt", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "docs", "notes", "todo.txt"), written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, []byte("- nothing yet\n"), data)

	// extracting a directory member creates the directory
	written, err = a.Extract("docs/", dest)
	require.NoError(t, err)
	fi, err := os.Stat(written)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestExtractMissingMemberWritesNothing(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)
	defer a.Close()

	dest := filepath.Join(t.TempDir(), "out")
	_, err = a.Extract("missing.txt", dest)
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestExtractAll(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		format string
		build  func(*testing.T, []fileSpec) string
	}{
		{"zip", buildZip},
		{"tar", buildTar},
	} {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()

			a, err := Open(tc.build(t, testSpecs))
			require.NoError(t, err)
			defer a.Close()

			dest := filepath.Join(t.TempDir(), "out")
			got, err := a.ExtractAll(dest)
			require.NoError(t, err)
			assert.Equal(t, dest, got)

			extracted := map[string]string{}
			err = filepath.WalkDir(dest, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(dest, path)
				if err != nil {
					return err
				}
				extracted[filepath.ToSlash(rel)] = string(data)
				return nil
			})
			require.NoError(t, err)

			want := map[string]string{}
			for _, s := range testSpecs {
				if !s.dir {
					want[s.name] = s.body
				}
			}
			assert.Equal(t, want, extracted)
		})
	}
}

func TestExtractAllSubset(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)
	defer a.Close()

	dest := filepath.Join(t.TempDir(), "out")
	// duplicates collapse to a single extraction
	_, err = a.ExtractAll(dest, "hello.txt", "docs/readme.md", "hello.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello, world\n"), data)
	data, err = os.ReadFile(filepath.Join(dest, "docs", "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, []byte("# readme\n"), data)

	_, err = os.Stat(filepath.Join(dest, "docs", "notes"))
	assert.True(t, os.IsNotExist(err), "unselected members must not be extracted")
}

func TestExtractAllUnknownMemberHasNoSideEffects(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)
	defer a.Close()

	dest := filepath.Join(t.TempDir(), "out")
	_, err = a.ExtractAll(dest, "hello.txt", "ghost.txt")
	require.ErrorIs(t, err, ErrMemberNotFound)

	var archiveErr *ArchiveError
	require.ErrorAs(t, err, &archiveErr)
	assert.Equal(t, "ghost.txt", archiveErr.Member)

	// validation failed before any write, including the destination dir
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	_, err = a.GetNames()
	require.ErrorIs(t, err, fs.ErrClosed)
	_, err = a.ReadBytes("hello.txt")
	require.ErrorIs(t, err, fs.ErrClosed)
	_, err = a.ExtractAll(t.TempDir())
	require.ErrorIs(t, err, fs.ErrClosed)
}

func TestStringMasksPassword(t *testing.T) {
	t.Parallel()

	a, err := Open(buildZip(t, testSpecs), WithPassword("hunter2"))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "hunter2", a.Password())
	assert.NotContains(t, a.String(), "hunter2")
	assert.Contains(t, a.String(), "********")

	plain, err := Open(buildZip(t, testSpecs))
	require.NoError(t, err)
	defer plain.Close()
	assert.NotContains(t, plain.String(), "password")
}

func TestCompressedTarVariants(t *testing.T) {
	t.Parallel()

	raw := buildTarBytes(t, testSpecs)

	compress := map[string]func(t *testing.T, data []byte) []byte{
		"tgz": func(t *testing.T, data []byte) []byte {
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			_, err := w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"tbz2": func(t *testing.T, data []byte) []byte {
			var buf bytes.Buffer
			w, err := bzip2.NewWriter(&buf, nil)
			require.NoError(t, err)
			_, err = w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"txz": func(t *testing.T, data []byte) []byte {
			var buf bytes.Buffer
			w, err := xz.NewWriter(&buf)
			require.NoError(t, err)
			_, err = w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"tzst": func(t *testing.T, data []byte) []byte {
			var buf bytes.Buffer
			w, err := zstd.NewWriter(&buf)
			require.NoError(t, err)
			_, err = w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"tlz4": func(t *testing.T, data []byte) []byte {
			var buf bytes.Buffer
			w := lz4.NewWriter(&buf)
			_, err := w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"tsz": func(t *testing.T, data []byte) []byte {
			var buf bytes.Buffer
			w := s2.NewWriter(&buf, s2.WriterSnappyCompat())
			_, err := w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
		"tlz": func(t *testing.T, data []byte) []byte {
			var buf bytes.Buffer
			w := lzip.NewWriter(&buf)
			_, err := w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return buf.Bytes()
		},
	}

	for ext, fn := range compress {
		t.Run(ext, func(t *testing.T) {
			t.Parallel()

			path := writeTemp(t, "test."+ext, fn(t, raw))
			require.True(t, IsTar(path))

			a, err := Open(path)
			require.NoError(t, err)
			defer a.Close()

			names, err := a.GetNames()
			require.NoError(t, err)
			assert.Equal(t, specNames(testSpecs), names)

			data, err := a.ReadBytes("docs/readme.md")
			require.NoError(t, err)
			assert.Equal(t, []byte("# readme\n"), data)
		})
	}
}

func TestOpenRelativePathResolvesAbsolute(t *testing.T) {
	path := buildZip(t, testSpecs)
	dir, base := filepath.Dir(path), filepath.Base(path)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	a, err := Open(base)
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, filepath.IsAbs(a.Path()))
	assert.Equal(t, path, a.Path())
}

// a member's content is read per call, so two reads see the same bytes
func TestRepeatedReadsAreIndependent(t *testing.T) {
	t.Parallel()

	a, err := Open(buildTar(t, testSpecs))
	require.NoError(t, err)
	defer a.Close()

	first, err := a.ReadBytes("hello.txt")
	require.NoError(t, err)
	second, err := a.ReadBytes("hello.txt")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
