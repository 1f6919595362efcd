package panel

import "bytes"

const (
	// SyncByte terminates every frame and anchors resynchronization.
	SyncByte = 0x7E

	headerSize  = 2 // length, sequence
	trailerSize = 3 // crc hi, crc lo, sync

	// MinFrameLen and MaxFrameLen bound the length field. The length byte
	// counts the whole frame including header and trailer.
	MinFrameLen = headerSize + trailerSize
	MaxFrameLen = 32
)

// EncodeFrame wraps a payload: [len][seq][payload][crc hi][crc lo][sync].
// The CRC covers length, sequence and payload.
func EncodeFrame(seq uint8, payload []byte) []byte {
	n := headerSize + len(payload) + trailerSize
	f := make([]byte, 0, n)
	f = append(f, byte(n), seq)
	f = append(f, payload...)
	crc := CRC16(f)
	return append(f, byte(crc>>8), byte(crc), SyncByte)
}

// Framer encodes outgoing frames with a running sequence number. Used by the
// panel emulator; the daemon only decodes.
type Framer struct {
	seq uint8
}

// Frame encodes one event and advances the sequence.
func (fr *Framer) Frame(e Event) []byte {
	f := EncodeFrame(fr.seq, e.Payload())
	fr.seq++
	return f
}

// Decoder turns a raw serial byte stream back into events. It tolerates
// garbage, truncated frames and lost bytes by scanning for the sync byte
// and dropping everything that fails validation.
type Decoder struct {
	buf      []byte
	synced   bool
	nextSeq  uint8
	seqKnown bool
	dropped  int
}

// NewDecoder returns a decoder that assumes the stream starts on a frame
// boundary.
func NewDecoder() *Decoder {
	return &Decoder{synced: true}
}

// Dropped returns the cumulative count of frames lost to corruption or
// sequence gaps.
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Feed appends raw bytes and returns every event completed by them.
func (d *Decoder) Feed(data []byte) []Event {
	d.buf = append(d.buf, data...)
	var events []Event

	for len(d.buf) > 0 {
		if !d.synced {
			// Scan for the end of the garbled frame.
			i := bytes.IndexByte(d.buf, SyncByte)
			if i < 0 {
				d.buf = d.buf[:0]
				break
			}
			d.buf = d.buf[i+1:]
			d.synced = true
			continue
		}

		// Skip idle sync bytes between frames.
		if d.buf[0] == SyncByte {
			d.buf = d.buf[1:]
			continue
		}
		if len(d.buf) < MinFrameLen {
			break
		}

		n := int(d.buf[0])
		if n < MinFrameLen || n > MaxFrameLen {
			d.desync()
			continue
		}
		if len(d.buf) < n {
			break
		}
		if d.buf[n-1] != SyncByte {
			d.desync()
			continue
		}
		wire := uint16(d.buf[n-3])<<8 | uint16(d.buf[n-2])
		if wire != CRC16(d.buf[:n-trailerSize]) {
			d.desync()
			continue
		}

		seq := d.buf[1]
		if d.seqKnown && seq != d.nextSeq {
			d.dropped += int(uint8(seq - d.nextSeq))
		}
		d.nextSeq = seq + 1
		d.seqKnown = true

		ev, err := parsePayload(d.buf[headerSize : n-trailerSize])
		d.buf = d.buf[n:]
		if err != nil {
			d.dropped++
			continue
		}
		events = append(events, ev)
	}

	// Release consumed capacity once the backlog drains.
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return events
}

func (d *Decoder) desync() {
	d.synced = false
	d.dropped++
}
