package spoke

import (
	"encoding/binary"
	"fmt"
	"iter"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/oliverbestmann/lockstep/lookup"
)

type storageKind uint8

const (
	// inline values live as raw bytes within the stores inlineBuffer.
	inline storageKind = iota + 1

	// owned values are boxed and referenced by the entry.
	owned
)

type entry struct {
	info   *TypeInfo
	exists bool

	kind storageKind

	// byte offset into the inline buffer, valid for inline entries
	offset uintptr

	// a *T for owned entries, nil while the entry does not exist
	box any
}

// Store holds at most one value for each registered type. Values of types without
// pointers are copied into a shared byte buffer, all other values are boxed.
// Storage for a type is allocated on first insert and reused from then on.
type Store struct {
	registry *Registry
	entries  lookup.Lookup[entry]
	buffer   inlineBuffer
}

func NewStore(registry *Registry) *Store {
	return &Store{registry: registry}
}

func (s *Store) Registry() *Registry {
	return s.registry
}

// Add inserts or overwrites the value of type T. T must be registered.
func Add[T any](s *Store, value T) {
	info := InfoOf[T](s.registry)

	e := s.entries.Ref(int(info.Key))
	if e == nil {
		s.entries.Set(int(info.Key), s.allocate(info))
		e = s.entries.Ref(int(info.Key))
	}

	checkEntryType(e, info, reflect.TypeFor[T]())

	switch e.kind {
	case inline:
		writeInline(&s.buffer, e.offset, value)

	case owned:
		box, ok := e.box.(*T)
		if !ok {
			box = new(T)
			e.box = box
		}

		*box = value
	}

	e.exists = true
}

// TryGet returns the value of type T, or false if no such value exists.
func TryGet[T any](s *Store) (T, bool) {
	var zero T

	key, ok := TryKeyOf[T](s.registry)
	if !ok {
		return zero, false
	}

	e := s.entries.Ref(int(key))
	if e == nil || !e.exists {
		return zero, false
	}

	checkEntryType(e, s.registry.Info(key), reflect.TypeFor[T]())

	if e.kind == inline {
		return readInline[T](&s.buffer, e.offset), true
	}

	return *e.box.(*T), true
}

// Has reports whether a value of type T exists.
func Has[T any](s *Store) bool {
	key, ok := TryKeyOf[T](s.registry)
	return ok && s.HasKey(key)
}

// Remove marks the value of type T as missing.
func Remove[T any](s *Store) {
	key, ok := TryKeyOf[T](s.registry)
	if ok {
		s.RemoveKey(key)
	}
}

func (s *Store) HasKey(key TypeKey) bool {
	e := s.entries.Ref(int(key))
	return e != nil && e.exists
}

// RemoveKey marks the value of the given type as missing. Inline storage stays
// reserved for the type, owned values are released.
func (s *Store) RemoveKey(key TypeKey) {
	e := s.entries.Ref(int(key))
	if e == nil {
		return
	}

	e.exists = false
	e.box = nil
}

// Clear marks every value as missing and keeps all allocated storage.
func (s *Store) Clear() {
	for key := range s.registry.Len() {
		s.RemoveKey(TypeKey(key))
	}
}

// Keys iterates over the keys of all existing values in ascending order.
func (s *Store) Keys() iter.Seq[TypeKey] {
	return func(yield func(TypeKey) bool) {
		for key, e := range s.entries.All() {
			if !e.exists {
				continue
			}

			if !yield(TypeKey(key)) {
				return
			}
		}
	}
}

// InlineBytes returns the number of bytes reserved for inline values.
func (s *Store) InlineBytes() int {
	return s.buffer.Len()
}

// Len returns the number of existing values.
func (s *Store) Len() int {
	var n int
	for range s.Keys() {
		n += 1
	}

	return n
}

// Checksum writes the state of the store into the digest. Missing values do not
// contribute, so two stores holding the same values hash equally regardless of
// the storage they have allocated. Inline values contribute their bytes without
// padding. Owned values are walked by reflection, unless they implement Checksummer.
func (s *Store) Checksum(digest *xxhash.Digest) {
	var scratch [4]byte

	for key, e := range s.entries.All() {
		if !e.exists {
			continue
		}

		binary.LittleEndian.PutUint32(scratch[:], uint32(key))
		_, _ = digest.Write(scratch[:])

		switch {
		case e.kind == inline && e.info.Size > 0:
			hashValue(digest, e.info.MemorySlices, s.buffer.ptrTo(e.offset))

		case e.kind == owned:
			if checksummer, ok := e.box.(Checksummer); ok {
				checksummer.Checksum(digest)
				continue
			}

			hashReflect(digest, reflect.ValueOf(e.box).Elem())
		}
	}
}

func (s *Store) allocate(info *TypeInfo) entry {
	if !info.Inline() {
		return entry{info: info, kind: owned}
	}

	return entry{
		info:   info,
		kind:   inline,
		offset: s.buffer.reserve(info.Size, info.Align),
	}
}

func checkEntryType(e *entry, info *TypeInfo, expected reflect.Type) {
	if e.info != info || info.Type != expected {
		panic(fmt.Sprintf("entry of type %s accessed as %s", e.info.Type, expected))
	}
}
