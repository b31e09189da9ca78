package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dyuri/fenixconv/internal/model"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// gzipMagic is the signature of gzip compressed content
var gzipMagic = []byte{0x1F, 0x8B}

// Cursor reads little-endian values sequentially from an in-memory buffer
type Cursor struct {
	data    []byte
	off     int
	endian  binary.ByteOrder  // Fenix files are little-endian
	decoder *encoding.Decoder // Decoder for fixed-length strings
}

// NewCursor creates a cursor over already decompressed data
func NewCursor(data []byte) *Cursor {
	return &Cursor{
		data:    data,
		endian:  binary.LittleEndian,
		decoder: charmap.Windows1252.NewDecoder(),
	}
}

// Decode reads r to the end and returns a cursor over its content. Gzip
// compressed input is transparently decompressed.
func Decode(r io.Reader) (*Cursor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		return NewCursor(data), nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, gzipError(err, "open gzip stream")
	}
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, gzipError(err, "decompress input")
	}
	return NewCursor(plain), nil
}

// gzipError classifies a gzip failure: a stream that ends early is
// truncated, anything else is not a valid gzip file
func gzipError(err error, what string) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return model.Wrap(model.ErrTruncated, err, "%s", what)
	}
	return model.Wrap(model.ErrFormatMismatch, err, "%s", what)
}

// Offset returns the current read position
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Peek returns up to n bytes without consuming them
func (c *Cursor) Peek(n int) []byte {
	end := c.off + n
	if end > len(c.data) {
		end = len(c.data)
	}
	return c.data[c.off:end]
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, model.Wrap(model.ErrTruncated, io.ErrUnexpectedEOF,
			"need %d bytes at offset %d, have %d", n, c.off, c.Remaining())
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

// ReadBytes returns the next n bytes. The slice aliases the cursor's buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.take(n)
}

// Skip advances the cursor by n bytes
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

// ReadUint8 reads one byte
func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return c.endian.Uint16(b), nil
}

// ReadInt16 reads a signed 16-bit integer
func (c *Cursor) ReadInt16() (int16, error) {
	v, err := c.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a signed 32-bit integer
func (c *Cursor) ReadInt32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(c.endian.Uint32(b)), nil
}

// ReadAsciiZ reads a zero padded string field of n bytes. The string ends at
// the first zero byte or at the end of the field.
func (c *Cursor) ReadAsciiZ(n int) (string, error) {
	b, err := c.take(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	decoded, err := c.decoder.Bytes(b)
	if err != nil {
		return string(b), nil
	}
	return string(decoded), nil
}

// Builder stages little-endian output in memory
type Builder struct {
	buf     bytes.Buffer
	endian  binary.ByteOrder
	encoder *encoding.Encoder
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		endian:  binary.LittleEndian,
		encoder: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
	}
}

// Len returns the number of staged bytes
func (b *Builder) Len() int { return b.buf.Len() }

// Bytes returns the staged bytes
func (b *Builder) Bytes() []byte { return b.buf.Bytes() }

// WriteBytes appends raw bytes
func (b *Builder) WriteBytes(p []byte) {
	b.buf.Write(p)
}

// WriteUint8 appends one byte
func (b *Builder) WriteUint8(v uint8) {
	b.buf.WriteByte(v)
}

// WriteUint16 appends an unsigned 16-bit integer
func (b *Builder) WriteUint16(v uint16) {
	var tmp [2]byte
	b.endian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
}

// WriteInt16 appends a signed 16-bit integer
func (b *Builder) WriteInt16(v int16) {
	b.WriteUint16(uint16(v))
}

// WriteInt32 appends a signed 32-bit integer
func (b *Builder) WriteInt32(v int32) {
	var tmp [4]byte
	b.endian.PutUint32(tmp[:], uint32(v))
	b.buf.Write(tmp[:])
}

// Fill appends n copies of v
func (b *Builder) Fill(v byte, n int) {
	for i := 0; i < n; i++ {
		b.buf.WriteByte(v)
	}
}

// WriteAsciiZ appends s as a zero padded field of n bytes. Longer strings
// are truncated; a string of exactly n bytes has no terminator.
func (b *Builder) WriteAsciiZ(s string, n int) error {
	encoded, err := b.encoder.Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("encode string %q: %w", s, err)
	}
	field := make([]byte, n)
	copy(field, encoded)
	b.buf.Write(field)
	return nil
}

// Compress gzips the staged bytes into w
func (b *Builder) Compress(w io.Writer) error {
	zw := gzip.NewWriter(w)
	if _, err := zw.Write(b.buf.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("compress output: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush gzip stream: %w", err)
	}
	return nil
}
