package spoke

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

type memorySlice struct {
	Start uintptr
	Len   uintptr
}

// memorySlicesOf returns a slice of memorySlice instances that define the bytes that
// are actually defined and do not contain padding within the type.
func memorySlicesOf(t reflect.Type, base uintptr, slices []memorySlice) []memorySlice {
	switch t.Kind() {
	case reflect.Struct:
		for idx := range t.NumField() {
			field := t.Field(idx)
			slices = memorySlicesOf(field.Type, base+field.Offset, slices)
		}

		return slices

	case reflect.Array:
		elem := t.Elem()
		for idx := range t.Len() {
			slices = memorySlicesOf(elem, base+uintptr(idx)*elem.Size(), slices)
		}

		return slices
	}

	size := t.Size()
	if size == 0 {
		return slices
	}

	if len(slices) > 0 {
		prev := &slices[len(slices)-1]
		if prev.Start+prev.Len == base {
			// we join the previous field, extend it
			prev.Len += size
			return slices
		}
	}

	// there was a gap, add another slice
	return append(slices, memorySlice{Start: base, Len: size})
}

// hashValue writes the well defined bytes of the value at ptr into the digest.
func hashValue(digest *xxhash.Digest, memorySlices []memorySlice, ptr unsafe.Pointer) {
	for _, slice := range memorySlices {
		start := unsafe.Add(ptr, slice.Start)
		_, _ = digest.Write(unsafe.Slice((*byte)(start), slice.Len))
	}
}

func putUint64(target []byte, value uint64) {
	binary.LittleEndian.PutUint64(target, value)
}

// Checksummer is implemented by values that write their own state into a checksum.
// It is only consulted for values stored by reference.
type Checksummer interface {
	Checksum(digest *xxhash.Digest)
}

// values nested deeper than this are assumed to be cyclic
const maxHashDepth = 32

// hashReflect writes the contents of a value into the digest, following pointers.
// Map entries contribute independent of their iteration order. Channels, funcs and
// unsafe pointers can not be hashed and cause a panic.
func hashReflect(digest *xxhash.Digest, value reflect.Value) {
	hashReflectAt(digest, value, 0)
}

func hashReflectAt(digest *xxhash.Digest, value reflect.Value, depth int) {
	if depth > maxHashDepth {
		panic(fmt.Sprintf("value of type %s is nested too deeply to checksum", value.Type()))
	}

	switch value.Kind() {
	case reflect.Bool:
		var b uint64
		if value.Bool() {
			b = 1
		}

		writeUint64(digest, b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint64(digest, uint64(value.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		writeUint64(digest, value.Uint())

	case reflect.Float32, reflect.Float64:
		writeUint64(digest, math.Float64bits(value.Float()))

	case reflect.Complex64, reflect.Complex128:
		c := value.Complex()
		writeUint64(digest, math.Float64bits(real(c)))
		writeUint64(digest, math.Float64bits(imag(c)))

	case reflect.String:
		writeUint64(digest, uint64(value.Len()))
		_, _ = digest.WriteString(value.String())

	case reflect.Array:
		for idx := range value.Len() {
			hashReflectAt(digest, value.Index(idx), depth+1)
		}

	case reflect.Slice:
		writeUint64(digest, uint64(value.Len()))
		if value.Len() == 0 {
			return
		}

		elem := value.Type().Elem()
		if !typeHasPointers(elem) {
			// elements are plain memory, hash them without padding
			slices := memorySlicesOf(elem, 0, nil)
			for idx := range value.Len() {
				hashValue(digest, slices, value.Index(idx).Addr().UnsafePointer())
			}

			return
		}

		for idx := range value.Len() {
			hashReflectAt(digest, value.Index(idx), depth+1)
		}

	case reflect.Struct:
		for idx := range value.NumField() {
			hashReflectAt(digest, value.Field(idx), depth+1)
		}

	case reflect.Pointer:
		if value.IsNil() {
			writeUint64(digest, 0)
			return
		}

		writeUint64(digest, 1)
		hashReflectAt(digest, value.Elem(), depth+1)

	case reflect.Interface:
		if value.IsNil() {
			writeUint64(digest, 0)
			return
		}

		elem := value.Elem()

		writeUint64(digest, 1)
		_, _ = digest.WriteString(elem.Type().String())
		hashReflectAt(digest, elem, depth+1)

	case reflect.Map:
		writeUint64(digest, uint64(value.Len()))

		// sum up the hashes of all entries, addition does not depend on their order
		var sum uint64
		iter := value.MapRange()
		for iter.Next() {
			entry := xxhash.New()
			hashReflectAt(entry, iter.Key(), depth+1)
			hashReflectAt(entry, iter.Value(), depth+1)
			sum += entry.Sum64()
		}

		writeUint64(digest, sum)

	default:
		panic(fmt.Sprintf("can not checksum value of kind %s in type %s", value.Kind(), value.Type()))
	}
}

func writeUint64(digest *xxhash.Digest, value uint64) {
	var scratch [8]byte
	putUint64(scratch[:], value)
	_, _ = digest.Write(scratch[:])
}
