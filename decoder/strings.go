package decoder

import (
	"io"

	"github.com/yumesaki/stbtool/errz"
)

// readString seeks to offset, scans a NUL-terminated literal, decodes it
// with the configured legacy encoding, and restores the stream position.
func (d *Decoder) readString(offset int64) (string, error) {
	prev, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", err
	}
	if _, err := d.r.Seek(offset, io.SeekStart); err != nil {
		return "", errz.Wrap(errz.ErrCorruptStream, err, "seeking string at 0x%X", offset)
	}

	raw, err := d.scanNulTerminated(offset)
	if err != nil {
		return "", err
	}
	if _, err := d.r.Seek(prev, io.SeekStart); err != nil {
		return "", err
	}

	decoded, err := d.encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errz.Wrap(errz.ErrCorruptStream, err, "decoding string at 0x%X", offset)
	}
	return string(decoded), nil
}

// scanNulTerminated reads bytes up to the scan limit, stopping before the
// terminating NUL. Exceeding the limit is a structural error, never a
// silent truncation.
func (d *Decoder) scanNulTerminated(offset int64) ([]byte, error) {
	var raw []byte
	var buf [1]byte
	for len(raw) <= d.scanLimit {
		if _, err := io.ReadFull(d.r, buf[:]); err != nil {
			return nil, errz.Wrap(errz.ErrCorruptStream, err, "unterminated string at 0x%X", offset)
		}
		if buf[0] == 0 {
			return raw, nil
		}
		raw = append(raw, buf[0])
	}
	return nil, errz.NewAt(errz.ErrCorruptStream, offset, "string exceeds %d-byte scan limit", d.scanLimit)
}
