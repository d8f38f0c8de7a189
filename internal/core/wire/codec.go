package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ============================================================================
//                              Decoder
// ============================================================================

// Decoder 从字节流中解出报文
//
// 非并发安全，由单一读取协程持有。
type Decoder struct {
	r io.Reader

	// MaxPayload 当前允许的最大负载
	MaxPayload uint32

	// Version 对端协议版本，决定是否校验 data_checksum
	Version uint32

	hdr [HeaderSize]byte
}

// NewDecoder 创建解码器
//
// 握手完成前应使用 MaxPayloadLegacy 与 VersionMin，
// 协商后由传输调高。
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:          r,
		MaxPayload: MaxPayload,
		Version:    VersionMin,
	}
}

// ReadPacket 读出下一个完整报文
//
// 帧错误返回 *ProtocolError；底层 I/O 错误原样上抛。
func (d *Decoder) ReadPacket() (*Packet, error) {
	if _, err := io.ReadFull(d.r, d.hdr[:]); err != nil {
		return nil, err
	}

	p := &Packet{
		Header: Header{
			Command:      binary.LittleEndian.Uint32(d.hdr[0:4]),
			Arg0:         binary.LittleEndian.Uint32(d.hdr[4:8]),
			Arg1:         binary.LittleEndian.Uint32(d.hdr[8:12]),
			DataLength:   binary.LittleEndian.Uint32(d.hdr[12:16]),
			DataChecksum: binary.LittleEndian.Uint32(d.hdr[16:20]),
			Magic:        binary.LittleEndian.Uint32(d.hdr[20:24]),
		},
	}

	if !p.MagicValid() {
		return nil, &ProtocolError{Command: p.Command, Err: ErrBadMagic}
	}

	if p.DataLength > d.MaxPayload {
		return nil, &ProtocolError{
			Command: p.Command,
			Err:     fmt.Errorf("%w: %d > %d", ErrOversizePayload, p.DataLength, d.MaxPayload),
		}
	}

	if p.DataLength > 0 {
		p.Payload = make([]byte, p.DataLength)
		if _, err := io.ReadFull(d.r, p.Payload); err != nil {
			return nil, err
		}
	}

	// v2 起 data_checksum 只发不验，非零值也接受
	if d.Version < VersionSkipChecksum {
		if sum := Checksum(p.Payload); sum != p.DataChecksum {
			return nil, &ProtocolError{
				Command: p.Command,
				Err:     fmt.Errorf("%w: got %08x want %08x", ErrBadChecksum, sum, p.DataChecksum),
			}
		}
	}

	return p, nil
}

// ============================================================================
//                              Encoder
// ============================================================================

// Encoder 将报文写入字节流
//
// 非并发安全，由单一写入协程持有。
type Encoder struct {
	w io.Writer

	// Version 协议版本，决定发出的 data_checksum
	Version uint32

	hdr [HeaderSize]byte
}

// NewEncoder 创建编码器
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:       w,
		Version: VersionMin,
	}
}

// WritePacket 补齐校验字段并写出报文
func (e *Encoder) WritePacket(p *Packet) error {
	p.DataLength = uint32(len(p.Payload))
	p.Magic = p.Command ^ 0xffffffff
	if e.Version < VersionSkipChecksum {
		p.DataChecksum = Checksum(p.Payload)
	} else {
		p.DataChecksum = 0
	}

	binary.LittleEndian.PutUint32(e.hdr[0:4], p.Command)
	binary.LittleEndian.PutUint32(e.hdr[4:8], p.Arg0)
	binary.LittleEndian.PutUint32(e.hdr[8:12], p.Arg1)
	binary.LittleEndian.PutUint32(e.hdr[12:16], p.DataLength)
	binary.LittleEndian.PutUint32(e.hdr[16:20], p.DataChecksum)
	binary.LittleEndian.PutUint32(e.hdr[20:24], p.Magic)

	if _, err := e.w.Write(e.hdr[:]); err != nil {
		return err
	}
	if len(p.Payload) > 0 {
		if _, err := e.w.Write(p.Payload); err != nil {
			return err
		}
	}
	return nil
}
