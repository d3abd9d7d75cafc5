package file

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceMetadata(t *testing.T) {
	path := writeTempFile(t, "hello.txt", "hello world\n")

	src, err := OpenFileSource(path)
	require.NoError(t, err)
	defer src.Close()

	meta, err := src.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", meta.Name)
	assert.Equal(t, uint64(12), meta.Size)
	assert.True(t, strings.HasPrefix(meta.MimeType, "text/plain"), meta.MimeType)
	assert.Equal(t, ChecksumMD5, meta.ChecksumAlgorithm)
	assert.Equal(t, "6f5902ac237024bdd0c176cb93063dc4", meta.Checksum)
	assert.NotNil(t, meta.ModTime)

	// Hashing must not move the read position.
	all, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(all))
}

func TestFileSourceChecksumAlgorithms(t *testing.T) {
	path := writeTempFile(t, "data.bin", "hello world\n")

	tests := []struct {
		alg  ChecksumAlgorithm
		want string
	}{
		{ChecksumMD5, "6f5902ac237024bdd0c176cb93063dc4"},
		{ChecksumSHA256, "a948904f2f0f479b8f8197694b30184b0d2ed1c1cd2a1ec0fb85d299a192a447"},
		{ChecksumNone, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			src, err := OpenFileSource(path, WithChecksumAlgorithm(tt.alg))
			require.NoError(t, err)
			defer src.Close()

			meta, err := src.Metadata()
			require.NoError(t, err)
			assert.Equal(t, tt.want, meta.Checksum)
		})
	}

	t.Run("blake2b-256", func(t *testing.T) {
		src, err := OpenFileSource(path, WithChecksumAlgorithm(ChecksumBLAKE2b256))
		require.NoError(t, err)
		defer src.Close()

		meta, err := src.Metadata()
		require.NoError(t, err)
		assert.Len(t, meta.Checksum, 64)

		direct, err := Checksum(strings.NewReader("hello world\n"), ChecksumBLAKE2b256)
		require.NoError(t, err)
		assert.Equal(t, direct, meta.Checksum)
	})
}

func TestFileSourceRange(t *testing.T) {
	path := writeTempFile(t, "digits.txt", "0123456789")

	src, err := OpenFileSource(path, WithName("renamed.txt"), WithMimeType("text/x-digits"))
	require.NoError(t, err)
	defer src.Close()

	meta, err := src.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", meta.Name)
	assert.Equal(t, "text/x-digits", meta.MimeType)

	require.NoError(t, src.SeekTo(6))
	src.SetLength(3)

	buf := make([]byte, 10)
	n, err := src.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "678", string(buf[:n]))

	n, err = src.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	assert.ErrorIs(t, src.SeekTo(11), ErrRangeOutOfBounds)
}

func TestFileSourceClose(t *testing.T) {
	path := writeTempFile(t, "a.txt", "abc")

	src, err := OpenFileSource(path)
	require.NoError(t, err)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	_, err = src.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrSourceClosed)
	_, err = src.Metadata()
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestOpenFileSourceErrors(t *testing.T) {
	_, err := OpenFileSource("../../etc/passwd")
	assert.ErrorIs(t, err, ErrDirectoryTraversal)

	_, err = OpenFileSource(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrSourceIO)

	_, err = OpenFileSource(t.TempDir())
	assert.ErrorIs(t, err, ErrSourceIO)
}

func TestBytesSource(t *testing.T) {
	src, err := NewBytesSource("page.html", []byte("<html><body>hi</body></html>"))
	require.NoError(t, err)

	meta, err := src.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "page.html", meta.Name)
	assert.True(t, strings.HasPrefix(meta.MimeType, "text/html"), meta.MimeType)
	assert.NotEmpty(t, meta.Checksum)
	assert.True(t, SupportsRange(src))
}

func TestMetadataMimeTypeDefault(t *testing.T) {
	assert.Equal(t, "application/octet-stream", Metadata{}.MimeTypeOrDefault())
	assert.Equal(t, "image/png", Metadata{MimeType: "image/png"}.MimeTypeOrDefault())
}

func TestParseChecksumAlgorithm(t *testing.T) {
	alg, err := ParseChecksumAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, ChecksumMD5, alg)

	alg, err = ParseChecksumAlgorithm("blake2b-256")
	require.NoError(t, err)
	assert.Equal(t, ChecksumBLAKE2b256, alg)

	_, err = ParseChecksumAlgorithm("crc32")
	assert.Error(t, err)

	_, err = ChecksumAlgorithm("crc32").NewHash()
	assert.Error(t, err)
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"report.pdf", "report.pdf", false},
		{"../../etc/passwd", "passwd", false},
		{`C:\Users\bob\notes.txt`, "notes.txt", false},
		{"dir/", "", true},
		{"..", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SafeName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDirectoryTraversal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePath(t *testing.T) {
	got, err := ValidatePath("/srv/share/./a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/srv/share/a.txt"), got)

	_, err = ValidatePath("")
	assert.Error(t, err)
}
