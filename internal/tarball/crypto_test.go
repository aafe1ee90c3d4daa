package tarball

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func encryptBytes(t *testing.T, plaintext, passphrase []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	ew, err := encryptWriter(&buf, passphrase)
	require.NoError(t, err)
	_, err = ew.Write(plaintext)
	require.NoError(t, err)
	require.NoError(t, ew.Close())
	return buf.Bytes()
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	pass := []byte("correct horse")
	for _, size := range []int{0, 1, 15, 16, 17, 31, 32, 4095, 4096, 100_000} {
		plaintext := make([]byte, size)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		ct := encryptBytes(t, plaintext, pass)
		require.True(t, bytes.HasPrefix(ct, []byte(saltedMagic)))
		// Header + salt + at least one padded block.
		require.GreaterOrEqual(t, len(ct), len(saltedMagic)+saltLen+16)

		dr, err := decryptReader(bytes.NewReader(ct), pass)
		require.NoError(t, err)
		got, err := io.ReadAll(dr)
		require.NoError(t, err)
		require.Equal(t, plaintext, got, "size %d", size)
	}
}

func TestEncryptProducesFreshSalt(t *testing.T) {
	pass := []byte("pw")
	a := encryptBytes(t, []byte("same input"), pass)
	b := encryptBytes(t, []byte("same input"), pass)
	require.NotEqual(t, a, b, "salt must differ between runs")
}

func TestDecryptRejectsMissingHeader(t *testing.T) {
	_, err := decryptReader(bytes.NewReader([]byte("this is not encrypted data")), []byte("pw"))
	require.Error(t, err)
}

func TestDecryptRejectsTruncatedStream(t *testing.T) {
	ct := encryptBytes(t, []byte("some plaintext that spans blocks"), []byte("pw"))
	dr, err := decryptReader(bytes.NewReader(ct[:len(ct)-5]), []byte("pw"))
	require.NoError(t, err)
	_, err = io.ReadAll(dr)
	require.Error(t, err)
}

func TestDecryptWrongPassphrase(t *testing.T) {
	plaintext := []byte("attack at dawn, bring snacks")
	ct := encryptBytes(t, plaintext, []byte("right"))

	dr, err := decryptReader(bytes.NewReader(ct), []byte("wrong"))
	require.NoError(t, err)
	got, err := io.ReadAll(dr)
	if err == nil {
		// CBC cannot authenticate; a wrong key occasionally yields valid
		// padding, but never the original plaintext.
		require.NotEqual(t, plaintext, got)
	}
}

func TestDecryptSmallReads(t *testing.T) {
	plaintext := bytes.Repeat([]byte("0123456789"), 100)
	ct := encryptBytes(t, plaintext, []byte("pw"))

	dr, err := decryptReader(shortReader{r: bytes.NewReader(ct)}, []byte("pw"))
	require.NoError(t, err)
	var got []byte
	one := make([]byte, 1)
	for {
		n, err := dr.Read(one)
		got = append(got, one[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, plaintext, got)
}

// shortReader yields at most 7 bytes per Read to exercise partial-block
// buffering in the decrypting reader.
type shortReader struct{ r io.Reader }

func (s shortReader) Read(p []byte) (int, error) {
	if len(p) > 7 {
		p = p[:7]
	}
	return s.r.Read(p)
}
