package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/klauspost/compress/zstd"
)

// codecMagic - сигнатура формата чанка, последняя цифра - версия
var codecMagic = [4]byte{'V', 'X', 'C', '1'}

const codecHeaderSize = 8

// MaxChunkVoxels - предел числа вокселей в одной записи (256³)
const MaxChunkVoxels = 1 << 24

// ErrCorruptChunk - данные чанка повреждены или имеют неизвестный формат
var ErrCorruptChunk = errors.New("поврежденные данные чанка")

var (
	codecOnce    sync.Once
	codecEncoder *zstd.Encoder
	codecDecoder *zstd.Decoder
	codecErr     error
)

// initCodec создаёт общий кодер и декодер; EncodeAll/DecodeAll безопасны для горутин
func initCodec() error {
	codecOnce.Do(func() {
		codecEncoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		codecDecoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(2*MaxChunkVoxels))
	})
	return codecErr
}

// EncodeVoxels сериализует воксели: заголовок (сигнатура + количество),
// затем пары (материал, цвет), сжатые zstd.
func EncodeVoxels(voxels []voxel.Voxel) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", err)
	}
	if len(voxels) > MaxChunkVoxels {
		return nil, fmt.Errorf("чанк слишком велик: %d вокселей", len(voxels))
	}
	raw := make([]byte, 0, len(voxels)*2)
	for _, v := range voxels {
		raw = append(raw, byte(v.Material), v.Color)
	}

	out := make([]byte, codecHeaderSize, codecHeaderSize+len(raw)/4)
	copy(out, codecMagic[:])
	binary.LittleEndian.PutUint32(out[4:], uint32(len(voxels)))
	return codecEncoder.EncodeAll(raw, out), nil
}

// DecodeVoxels восстанавливает воксели, сериализованные EncodeVoxels
func DecodeVoxels(data []byte) ([]voxel.Voxel, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", err)
	}
	if len(data) < codecHeaderSize || [4]byte(data[:4]) != codecMagic {
		return nil, ErrCorruptChunk
	}
	count := int(binary.LittleEndian.Uint32(data[4:codecHeaderSize]))
	if count > MaxChunkVoxels {
		return nil, fmt.Errorf("%w: слишком много вокселей: %d", ErrCorruptChunk, count)
	}

	// буфер растёт по фактическому размеру данных, а не по заголовку
	raw, err := codecDecoder.DecodeAll(data[codecHeaderSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
	}
	if len(raw) != count*2 {
		return nil, fmt.Errorf("%w: ожидалось %d вокселей, получено байт %d", ErrCorruptChunk, count, len(raw))
	}

	voxels := make([]voxel.Voxel, count)
	for i := range voxels {
		m := voxel.VoxelType(raw[2*i])
		if m >= voxel.MaxVoxelType {
			return nil, fmt.Errorf("%w: неизвестный материал %d", ErrCorruptChunk, m)
		}
		voxels[i] = voxel.Voxel{Material: m, Color: raw[2*i+1]}
	}
	return voxels, nil
}
