package tarball

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// OpenSSL "enc" compatible parameters: AES-256-CBC with PKCS#7 padding, key
// and IV derived by PBKDF2-HMAC-SHA256 over an 8-byte salt, matching
//
//	openssl enc -aes-256-cbc -pbkdf2 -iter 10000 -md sha256
const (
	saltedMagic   = "Salted__"
	saltLen       = 8
	kdfIterations = 10000
	aesKeyLen     = 32
	aesIVLen      = aes.BlockSize
)

func deriveCipher(passphrase, salt []byte) (cipher.Block, []byte, error) {
	keyiv := pbkdf2.Key(passphrase, salt, kdfIterations, aesKeyLen+aesIVLen, sha256.New)
	block, err := aes.NewCipher(keyiv[:aesKeyLen])
	if err != nil {
		return nil, nil, err
	}
	return block, keyiv[aesKeyLen:], nil
}

// encryptWriter emits the OpenSSL header ("Salted__" + salt) to w and returns
// a WriteCloser that encrypts everything written to it. Close flushes the
// final padded block and must be called to produce a valid stream.
func encryptWriter(w io.Writer, passphrase []byte) (io.WriteCloser, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(saltedMagic)); err != nil {
		return nil, err
	}
	if _, err := w.Write(salt); err != nil {
		return nil, err
	}
	block, iv, err := deriveCipher(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return &cbcWriter{dst: w, mode: cipher.NewCBCEncrypter(block, iv)}, nil
}

// decryptReader consumes the OpenSSL header and salt from r and returns a
// reader yielding the decrypted plaintext.
func decryptReader(r io.Reader, passphrase []byte) (io.Reader, error) {
	head := make([]byte, len(saltedMagic)+saltLen)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	if string(head[:len(saltedMagic)]) != saltedMagic {
		return nil, errors.New("aes: missing OpenSSL salt header")
	}
	block, iv, err := deriveCipher(passphrase, head[len(saltedMagic):])
	if err != nil {
		return nil, err
	}
	return &cbcReader{src: r, mode: cipher.NewCBCDecrypter(block, iv)}, nil
}

// cbcWriter buffers plaintext, encrypting full blocks as they accumulate.
// Close applies PKCS#7 padding and flushes the remainder.
type cbcWriter struct {
	dst  io.Writer
	mode cipher.BlockMode
	buf  []byte
}

func (c *cbcWriter) Write(p []byte) (int, error) {
	c.buf = append(c.buf, p...)
	bs := c.mode.BlockSize()
	n := len(c.buf) / bs * bs
	if n == 0 {
		return len(p), nil
	}
	out := make([]byte, n)
	c.mode.CryptBlocks(out, c.buf[:n])
	c.buf = c.buf[:copy(c.buf, c.buf[n:])]
	if _, err := c.dst.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *cbcWriter) Close() error {
	bs := c.mode.BlockSize()
	pad := bs - len(c.buf)%bs
	for i := 0; i < pad; i++ {
		c.buf = append(c.buf, byte(pad))
	}
	out := make([]byte, len(c.buf))
	c.mode.CryptBlocks(out, c.buf)
	c.buf = nil
	_, err := c.dst.Write(out)
	return err
}

// cbcReader decrypts block-aligned ciphertext from src. The last block in
// hand is always held back until EOF so the PKCS#7 padding can be validated
// and stripped before the final bytes are served.
type cbcReader struct {
	src  io.Reader
	mode cipher.BlockMode
	ct   []byte // buffered ciphertext, not yet decrypted
	pt   []byte // decrypted plaintext ready to serve
	err  error  // sticky; returned once pt drains
}

func (c *cbcReader) Read(p []byte) (int, error) {
	for len(c.pt) == 0 && c.err == nil {
		c.fill()
	}
	if len(c.pt) == 0 {
		return 0, c.err
	}
	n := copy(p, c.pt)
	c.pt = c.pt[n:]
	return n, nil
}

func (c *cbcReader) fill() {
	buf := make([]byte, 4096)
	n, err := c.src.Read(buf)
	c.ct = append(c.ct, buf[:n]...)
	bs := c.mode.BlockSize()
	switch {
	case err == io.EOF:
		if len(c.ct) == 0 || len(c.ct)%bs != 0 {
			c.err = io.ErrUnexpectedEOF
			return
		}
		out := make([]byte, len(c.ct))
		c.mode.CryptBlocks(out, c.ct)
		c.ct = nil
		pad := int(out[len(out)-1])
		if pad == 0 || pad > bs {
			c.err = errors.New("aes: invalid padding")
			return
		}
		for _, b := range out[len(out)-pad:] {
			if int(b) != pad {
				c.err = errors.New("aes: invalid padding")
				return
			}
		}
		c.pt = append(c.pt, out[:len(out)-pad]...)
		c.err = io.EOF
	case err != nil:
		c.err = err
	default:
		keep := len(c.ct)/bs*bs - bs
		if keep <= 0 {
			return
		}
		out := make([]byte, keep)
		c.mode.CryptBlocks(out, c.ct[:keep])
		c.ct = c.ct[:copy(c.ct, c.ct[keep:])]
		c.pt = append(c.pt, out...)
	}
}
