package xdr

import (
	"bytes"
	"testing"
)

// FuzzReaderReadString tests length-prefixed string reading with arbitrary
// data.
func FuzzReaderReadString(f *testing.F) {
	f.Add([]byte{5, 0, 0, 0, 'h', 'e', 'l', 'l', 'o'})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0xff}, 8))

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReader(data)
		// Should not panic, may return error.
		_, _ = r.ReadString()
	})
}

// FuzzReaderReadInt tests integer reading with arbitrary data.
func FuzzReaderReadInt(f *testing.F) {
	f.Add([]byte{0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{0x00, 0x00, 0x00, 0x80}) // Min int32

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReader(data)
		_, _ = r.ReadUint8()
		_, _ = NewReader(data).ReadInt32()
		_, _ = NewReader(data).ReadUint32()
	})
}

// FuzzReaderReadFloat tests float reading with arbitrary data.
func FuzzReaderReadFloat(f *testing.F) {
	f.Add([]byte{0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0x00, 0x00, 0x80, 0x3f}) // 1.0f
	f.Add([]byte{0x00, 0x00, 0xc0, 0x7f}) // NaN

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = NewReader(data).ReadFloat32()
	})
}

// FuzzReaderReadBytes tests byte slice reading with arbitrary requested
// lengths.
func FuzzReaderReadBytes(f *testing.F) {
	f.Add([]byte{}, 0)
	f.Add([]byte{0x01, 0x02, 0x03}, 2)
	f.Add([]byte{0x01, 0x02, 0x03}, 100) // Request more than available

	f.Fuzz(func(t *testing.T, data []byte, n int) {
		if n < -1000000 {
			n = -1000000
		}
		if n > 1000000 {
			n = 1000000 // Limit allocation
		}
		_, _ = NewReader(data).ReadBytes(n)
	})
}

// FuzzWriterRoundtrip tests write/read roundtrip through BufferWriter and
// Reader.
func FuzzWriterRoundtrip(f *testing.F) {
	f.Add(int32(0), uint32(0), float32(0), "test")
	f.Add(int32(-1), uint32(0xffffffff), float32(1.5), "")
	f.Add(int32(0x7fffffff), uint32(0), float32(0), "hello world")

	f.Fuzz(func(t *testing.T, i32 int32, u32 uint32, f32 float32, str string) {
		w := NewBufferWriter(256)
		w.WriteInt32(i32)
		w.WriteUint32(u32)
		w.WriteFloat32(f32)
		w.WriteString(str)

		r := NewReader(w.Bytes())

		ri32, err := r.ReadInt32()
		if err != nil {
			t.Fatalf("ReadInt32 failed: %v", err)
		}
		if ri32 != i32 {
			t.Errorf("int32 mismatch: got %d, want %d", ri32, i32)
		}

		ru32, err := r.ReadUint32()
		if err != nil {
			t.Fatalf("ReadUint32 failed: %v", err)
		}
		if ru32 != u32 {
			t.Errorf("uint32 mismatch: got %d, want %d", ru32, u32)
		}

		rf32, err := r.ReadFloat32()
		if err != nil {
			t.Fatalf("ReadFloat32 failed: %v", err)
		}
		if rf32 != f32 && !(rf32 != rf32 && f32 != f32) {
			t.Errorf("float32 mismatch: got %v, want %v", rf32, f32)
		}

		rstr, err := r.ReadString()
		if err != nil {
			t.Fatalf("ReadString failed: %v", err)
		}
		if rstr != str {
			t.Errorf("string mismatch: got %q, want %q", rstr, str)
		}
	})
}

// FuzzReaderEdgeCases tests small/empty buffers never panic.
func FuzzReaderEdgeCases(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte{0x00, 0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReader(data)
		for i := 0; i < 100; i++ {
			if _, err := r.ReadUint8(); err != nil {
				break
			}
		}
		if r.Len() < 0 {
			t.Errorf("Len returned negative: %d", r.Len())
		}
	})
}
