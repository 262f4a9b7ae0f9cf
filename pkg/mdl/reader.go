package mdl

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// reader is a big-endian cursor over a seekable stream.
// All fixed-width reads are exact: a short read is reported as ErrTruncatedMDLData.
type reader struct {
	rs io.ReadSeeker
}

func newReader(rs io.ReadSeeker) *reader {
	return &reader{rs: rs}
}

// tell returns the current cursor position.
func (r *reader) tell() (int64, error) {
	return r.rs.Seek(0, io.SeekCurrent)
}

// seek moves the cursor to an absolute position.
func (r *reader) seek(pos int64) error {
	if pos < 0 {
		return errors.Wrapf(ErrInvalidSeek, "seek to %d", pos)
	}
	_, err := r.rs.Seek(pos, io.SeekStart)
	return err
}

// skip advances the cursor by n bytes without reading them.
func (r *reader) skip(n int64) error {
	_, err := r.rs.Seek(n, io.SeekCurrent)
	return err
}

// size returns the total stream length and leaves the cursor where it was.
func (r *reader) size() (int64, error) {
	cur, err := r.tell()
	if err != nil {
		return 0, err
	}
	end, err := r.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.rs.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// read fills buf completely.
func (r *reader) read(buf []byte) error {
	pos, _ := r.tell()
	if _, err := io.ReadFull(r.rs, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrapf(ErrTruncatedMDLData, "need %d bytes at 0x%x", len(buf), pos)
		}
		return errors.Wrapf(err, "reading %d bytes at 0x%x", len(buf), pos)
	}
	return nil
}

func (r *reader) uint32() (uint32, error) {
	var buf [4]byte
	if err := r.read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (r *reader) int32() (int32, error) {
	v, err := r.uint32()
	return int32(v), err
}

func (r *reader) float32() (float32, error) {
	v, err := r.uint32()
	return math.Float32frombits(v), err
}

// peekUint32 reads four bytes and rewinds, so the next read sees the same field.
func (r *reader) peekUint32() (uint32, error) {
	pos, err := r.tell()
	if err != nil {
		return 0, err
	}
	v, err := r.uint32()
	if err != nil {
		return 0, err
	}
	if err := r.seek(pos); err != nil {
		return 0, err
	}
	return v, nil
}

// bytes reads exactly n bytes. The request is rejected before allocating
// when fewer than n bytes remain in the stream.
func (r *reader) bytes(n int64) ([]byte, error) {
	pos, err := r.tell()
	if err != nil {
		return nil, err
	}
	end, err := r.size()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > end-pos {
		return nil, errors.Wrapf(ErrTruncatedMDLData, "need %d bytes at 0x%x, %d available", n, pos, end-pos)
	}
	buf := make([]byte, n)
	if err := r.read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// cstring reads a null-terminated string. Reaching the end of the stream
// before the terminator is an error.
func (r *reader) cstring() (string, error) {
	var out []byte
	chunk := make([]byte, 64)
	for {
		n, err := r.rs.Read(chunk)
		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			out = append(out, chunk[:i]...)
			return string(out), nil
		}
		out = append(out, chunk[:n]...)
		if err == io.EOF || (err == nil && n == 0) {
			return "", errors.Wrap(ErrTruncatedMDLData, "unterminated string")
		}
		if err != nil {
			return "", err
		}
	}
}
