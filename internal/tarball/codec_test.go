package tarball

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecForPath(t *testing.T) {
	tests := []struct {
		path string
		want codec
	}{
		{"backup.tar", codec{}},
		{"backup.tgz", codec{compression: compressionGzip}},
		{"backup.tar.gz", codec{compression: compressionGzip}},
		{"backup.tzst", codec{compression: compressionZstd}},
		{"backup.tar.zst", codec{compression: compressionZstd}},
		{"backup.tar.aes", codec{encrypted: true}},
		{"backup.tar.gz.aes", codec{compression: compressionGzip, encrypted: true}},
		{"backup.tar.zst.aes", codec{compression: compressionZstd, encrypted: true}},
		{"/some/dir.gz/backup.tar", codec{}},
		{"BACKUP.TGZ", codec{compression: compressionGzip}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, codecForPath(tt.path), "path %q", tt.path)
	}
}

func roundTrip(t *testing.T, archive string, opts Options) {
	t.Helper()
	chdir(t, t.TempDir())
	writeFile(t, "some_dir/a.txt", "alpha")
	writeFile(t, "some_dir/sub/b.txt", "beta")

	require.NoError(t, NewWriter(archive, opts).Create("some_dir"))
	require.Equal(t,
		[]string{"some_dir/a.txt", "some_dir/sub/b.txt"},
		listNames(t, archive, opts))

	writeFile(t, "extra.txt", "more")
	require.NoError(t, NewWriter(archive, opts).Add("extra.txt"))

	require.NoError(t, NewReader(archive, opts).Extract("out"))
	got, err := os.ReadFile("out/some_dir/sub/b.txt")
	require.NoError(t, err)
	require.Equal(t, "beta", string(got))
	got, err = os.ReadFile("out/extra.txt")
	require.NoError(t, err)
	require.Equal(t, "more", string(got))
}

func TestGzipArchiveRoundTrip(t *testing.T) {
	roundTrip(t, "backup.tgz", Options{})
}

func TestZstdArchiveRoundTrip(t *testing.T) {
	roundTrip(t, "backup.tar.zst", Options{})
}

func TestEncryptedArchiveRoundTrip(t *testing.T) {
	roundTrip(t, "backup.tar.aes", Options{Passphrase: []byte("secret")})
}

func TestEncryptedCompressedArchiveRoundTrip(t *testing.T) {
	roundTrip(t, "backup.tgz.aes", Options{Passphrase: []byte("secret")})
}

func TestEncryptedArchiveRequiresPassphrase(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, "a.txt", "a")

	err := NewWriter("backup.tar.aes", Options{}).Create("a.txt")
	require.ErrorIs(t, err, ErrPassphrase)
	require.NoFileExists(t, "backup.tar.aes")

	require.NoError(t,
		NewWriter("backup.tar.aes", Options{Passphrase: []byte("secret")}).Create("a.txt"))
	err = NewReader("backup.tar.aes", Options{}).List()
	require.ErrorIs(t, err, ErrPassphrase)
}

func TestEncryptedArchiveWrongPassphrase(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, "a.txt", "a")
	require.NoError(t,
		NewWriter("backup.tar.aes", Options{Passphrase: []byte("secret")}).Create("a.txt"))

	err := NewReader("backup.tar.aes", Options{Passphrase: []byte("wrong")}).List()
	require.Error(t, err)
}

func TestPlainArchiveIgnoresPassphrase(t *testing.T) {
	// A passphrase in the environment must not affect unencrypted archives.
	chdir(t, t.TempDir())
	writeFile(t, "a.txt", "a")
	opts := Options{Passphrase: []byte("secret")}
	require.NoError(t, NewWriter("out.tar", opts).Create("a.txt"))
	require.Equal(t, []string{"a.txt"}, listNames(t, "out.tar", Options{}))
}
