package mdl

import (
	"go.uber.org/zap"
)

// materialBias is the structural correction added to the first hop of the
// material chain.
const materialBias = 0x20

// resolveFunc decodes the value a relative pointer addresses, starting at
// the current cursor.
type resolveFunc[T any] func(d *decoder) (T, error)

// relPtr resolves a self-relative pointer at the cursor.
//
// It reads a big-endian int32 offset and addresses fieldPos+offset+bias.
// Negative offsets, targets outside [0, size) and nested decode failures
// all yield ok=false. The cursor always ends four bytes past fieldPos.
// Only failure to read the offset itself, or to restore the cursor, is
// returned as an error.
func relPtr[T any](d *decoder, bias int64, decode resolveFunc[T]) (value T, ok bool, err error) {
	fieldPos, err := d.r.tell()
	if err != nil {
		return value, false, err
	}
	offset, err := d.r.int32()
	if err != nil {
		return value, false, err
	}
	resume := fieldPos + 4

	if offset < 0 {
		d.absent(fieldPos, "null offset", offset)
		return value, false, nil
	}

	target := fieldPos + int64(offset) + bias
	if target < 0 {
		d.absent(fieldPos, "negative target", offset)
		return value, false, nil
	}

	end, err := d.r.size()
	if err != nil {
		return value, false, err
	}
	if target >= end {
		d.absent(fieldPos, "target past end of stream", offset)
		return value, false, nil
	}

	v, decodeErr := func() (T, error) {
		if err := d.r.seek(target); err != nil {
			var zero T
			return zero, err
		}
		return decode(d)
	}()

	if err := d.r.seek(resume); err != nil {
		return value, false, err
	}
	if decodeErr != nil {
		d.log.Debug("relative pointer target unreadable",
			zap.Int64("field", fieldPos),
			zap.Int64("target", target),
			zap.Error(decodeErr))
		return value, false, nil
	}
	return v, true, nil
}

// absent traces a pointer that resolved to nothing. The condition is not an error.
func (d *decoder) absent(fieldPos int64, reason string, offset int32) {
	d.log.Debug("relative pointer absent",
		zap.Int64("field", fieldPos),
		zap.Int32("offset", offset),
		zap.String("reason", reason))
}

// rawBuffer returns a resolver reading exactly n bytes.
func rawBuffer(n int64) resolveFunc[[]byte] {
	return func(d *decoder) ([]byte, error) {
		return d.r.bytes(n)
	}
}

// nullString resolves a null-terminated string.
func nullString(d *decoder) (string, error) {
	return d.r.cstring()
}

// hop wraps next so a pointer's target is itself a pointer. An absent inner
// pointer is reported as a failure so the outer hop collapses to absent too.
func hop[T any](bias int64, next resolveFunc[T]) resolveFunc[T] {
	return func(d *decoder) (T, error) {
		v, ok, err := relPtr(d, bias, next)
		if err != nil {
			return v, err
		}
		if !ok {
			return v, errAbsent
		}
		return v, nil
	}
}

// indirectMaterialName resolves the material name chain
// offset1 -> offset2 -> offset3 -> string. The first hop carries materialBias;
// the second and third are plain. Any missing hop makes the whole name absent.
func indirectMaterialName(d *decoder) (*string, error) {
	chain := hop(0, hop(0, nullString))
	name, ok, err := relPtr(d, materialBias, chain)
	if err != nil || !ok {
		return nil, err
	}
	return &name, nil
}
