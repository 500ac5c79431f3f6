// codec.go - Little-endian record writer/reader shared by the account
// types.

package payroll

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"payroll/internal/confidential"
)

type recordWriter struct {
	buf bytes.Buffer
}

func newRecordWriter(disc [8]byte) *recordWriter {
	w := &recordWriter{}
	w.buf.Write(disc[:])
	return w
}

func (w *recordWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *recordWriter) i64(v int64) {
	w.u64(uint64(v))
}

func (w *recordWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *recordWriter) boolean(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *recordWriter) value(v confidential.Value) {
	w.buf.Write(v[:])
}

func (w *recordWriter) address(a Address) {
	w.buf.Write(a[:])
}

func (w *recordWriter) varBytes(b []byte) {
	w.u32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *recordWriter) finish() ([]byte, error) {
	return w.buf.Bytes(), nil
}

type recordReader struct {
	data []byte
	off  int
	bad  bool
}

func newRecordReader(data []byte, disc [8]byte) (*recordReader, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: record shorter than discriminator", ErrCorruptRecord)
	}
	if !bytes.Equal(data[:8], disc[:]) {
		return nil, fmt.Errorf("%w: discriminator mismatch", ErrCorruptRecord)
	}
	return &recordReader{data: data, off: 8}, nil
}

func (r *recordReader) take(n int) []byte {
	if r.bad || r.off+n > len(r.data) {
		r.bad = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *recordReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *recordReader) i64() int64 {
	return int64(r.u64())
}

func (r *recordReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *recordReader) boolean() bool {
	b := r.take(1)
	if b == nil {
		return false
	}
	return b[0] != 0
}

func (r *recordReader) value() confidential.Value {
	var v confidential.Value
	b := r.take(confidential.ValueSize)
	if b != nil {
		copy(v[:], b)
	}
	return v
}

func (r *recordReader) address() Address {
	var a Address
	b := r.take(AddressSize)
	if b != nil {
		copy(a[:], b)
	}
	return a
}

func (r *recordReader) varBytes() []byte {
	n := r.u32()
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *recordReader) finish(kind string) error {
	if r.bad {
		return corrupt(kind, "truncated record")
	}
	if r.off != len(r.data) {
		return corrupt(kind, "trailing bytes")
	}
	return nil
}
