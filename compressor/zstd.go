package compressor

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// frameBlobCompress and frameBlobDecompress turn a serialized frame (see
// wire.go) into the opaque blob a container.FrameRecord carries, and back.
// Pooling the encoder/decoder mirrors the teacher's zlib writer/reader
// pool: construction is the expensive part, not the individual Write.

type zstdEncoderPoolItem struct {
	enc *zstd.Encoder
	buf *bytes.Buffer
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		buf := new(bytes.Buffer)
		enc, err := zstd.NewWriter(buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(err)
		}
		return &zstdEncoderPoolItem{enc: enc, buf: buf}
	},
}

var zstdDecoder *zstd.Decoder
var zstdDecoderOnce sync.Once

func sharedZstdDecoder() *zstd.Decoder {
	zstdDecoderOnce.Do(func() {
		d, err := zstd.NewReader(nil)
		if err != nil {
			panic(err)
		}
		zstdDecoder = d
	})
	return zstdDecoder
}

func frameBlobCompress(src []byte) ([]byte, error) {
	item := zstdEncoderPool.Get().(*zstdEncoderPoolItem)
	item.buf.Reset()
	item.enc.Reset(item.buf)

	if _, err := item.enc.Write(src); err != nil {
		zstdEncoderPool.Put(item)
		return nil, err
	}
	if err := item.enc.Close(); err != nil {
		zstdEncoderPool.Put(item)
		return nil, err
	}

	result := make([]byte, item.buf.Len())
	copy(result, item.buf.Bytes())
	zstdEncoderPool.Put(item)
	return result, nil
}

func frameBlobDecompress(src []byte) ([]byte, error) {
	return sharedZstdDecoder().DecodeAll(src, nil)
}
