package cache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/lectern/tts"
)

// diskFileExt marks cache entries: zstd-compressed PCM with a small header.
const diskFileExt = ".pcm.zst"

// header is a magic marker plus the sample rate.
var diskMagic = []byte("LCTA")

type diskCache struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newDiskCache(dir string) (*diskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &diskCache{dir: dir, encoder: encoder, decoder: decoder}, nil
}

func (d *diskCache) path(key string) string {
	return filepath.Join(d.dir, key+diskFileExt)
}

func (d *diskCache) get(key string) (*tts.AudioChunk, bool) {
	compressed, err := os.ReadFile(d.path(key))
	if err != nil {
		return nil, false
	}
	raw, err := d.decoder.DecodeAll(compressed, nil)
	if err != nil || len(raw) < len(diskMagic)+4 {
		// A corrupt entry is a miss; drop it so it gets rewritten.
		_ = os.Remove(d.path(key))
		return nil, false
	}
	if string(raw[:len(diskMagic)]) != string(diskMagic) {
		_ = os.Remove(d.path(key))
		return nil, false
	}
	rate := int(binary.LittleEndian.Uint32(raw[len(diskMagic):]))
	pcm := tts.PCMFromBytes(raw[len(diskMagic)+4:])
	return tts.NewAudioChunk(pcm, rate), true
}

func (d *diskCache) put(key string, chunk *tts.AudioChunk) {
	pcm := chunk.Bytes()
	raw := make([]byte, 0, len(diskMagic)+4+len(pcm))
	raw = append(raw, diskMagic...)
	raw = binary.LittleEndian.AppendUint32(raw, uint32(chunk.SampleRate))
	raw = append(raw, pcm...)

	compressed := d.encoder.EncodeAll(raw, nil)

	// Write-then-rename keeps readers from seeing partial entries.
	tmp, err := os.CreateTemp(d.dir, "put-*")
	if err != nil {
		return
	}
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), d.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
	}
}
