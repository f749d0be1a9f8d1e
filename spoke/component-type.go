package spoke

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// TypeKey is the dense identity of a registered type. Keys are assigned in
// registration order, starting at zero.
type TypeKey int32

// TypeInfo describes a registered type.
type TypeInfo struct {
	Key  TypeKey
	Name string
	Type reflect.Type

	Size  uintptr
	Align uintptr

	// HasPointers indicates that a value of the type contains pointers, e.g.
	// by having a field of type *T, a string, a slice or a map value.
	// Values with pointers are never copied into raw byte storage.
	HasPointers bool

	// MemorySlices define regions that this type is well defined in. If the type has holes
	// due to having padding bytes, we might have multiple memory slices.
	MemorySlices []memorySlice
}

func (t *TypeInfo) String() string {
	return t.Name
}

// Inline reports whether values of this type are stored as raw bytes.
func (t *TypeInfo) Inline() bool {
	return !t.HasPointers && t.Align <= wordSize
}

// Registry assigns TypeKeys. Every peer of a session must register the same types
// in the same order during startup, which makes the keys identical across processes.
type Registry struct {
	byType map[reflect.Type]*TypeInfo
	types  []*TypeInfo
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{byType: map[reflect.Type]*TypeInfo{}}
}

// Register assigns the next free key to T. Registering a type twice returns the
// key assigned by the first call. Register panics once the registry is frozen.
func Register[T any](r *Registry) TypeKey {
	reflectType := reflect.TypeFor[T]()

	if info, ok := r.byType[reflectType]; ok {
		return info.Key
	}

	if r.frozen {
		panic(fmt.Sprintf("can not register type %s: registry is frozen", reflectType))
	}

	info := &TypeInfo{
		Key:         TypeKey(len(r.types)),
		Name:        reflectType.String(),
		Type:        reflectType,
		Size:        reflectType.Size(),
		Align:       uintptr(reflectType.Align()),
		HasPointers: typeHasPointers(reflectType),
	}

	if !info.HasPointers {
		info.MemorySlices = memorySlicesOf(reflectType, 0, nil)
	}

	r.types = append(r.types, info)
	r.byType[reflectType] = info

	slog.Debug(
		"New type registered",
		slog.String("name", info.Name),
		slog.Int("key", int(info.Key)),
		slog.Bool("inline", info.Inline()),
	)

	return info.Key
}

// KeyOf returns the key of T. It panics if T was never registered.
func KeyOf[T any](r *Registry) TypeKey {
	return InfoOf[T](r).Key
}

// TryKeyOf returns the key of T and true, or false if T is not registered.
func TryKeyOf[T any](r *Registry) (TypeKey, bool) {
	info, ok := r.byType[reflect.TypeFor[T]()]
	if !ok {
		return 0, false
	}

	return info.Key, true
}

// InfoOf returns the TypeInfo of T. It panics if T was never registered.
func InfoOf[T any](r *Registry) *TypeInfo {
	info, ok := r.byType[reflect.TypeFor[T]()]
	if !ok {
		panic(fmt.Sprintf("type %s is not registered", reflect.TypeFor[T]()))
	}

	return info
}

// Info returns the TypeInfo for a key. It panics for unknown keys.
func (r *Registry) Info(key TypeKey) *TypeInfo {
	if key < 0 || int(key) >= len(r.types) {
		panic(fmt.Sprintf("unknown type key %d", key))
	}

	return r.types[key]
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.types)
}

// Freeze prevents any further registration.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

// Fingerprint hashes names and layouts of all registered types in key order.
// Two registries with the same fingerprint assign the same keys.
func (r *Registry) Fingerprint() uint64 {
	digest := xxhash.New()

	var scratch [8]byte
	for _, info := range r.types {
		_, _ = digest.WriteString(info.Name)

		putUint64(scratch[:], uint64(info.Size))
		_, _ = digest.Write(scratch[:])
	}

	return digest.Sum64()
}

func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false

	case reflect.Array:
		return t.Len() > 0 && typeHasPointers(t.Elem())

	case reflect.Struct:
		for idx := range t.NumField() {
			if typeHasPointers(t.Field(idx).Type) {
				return true
			}
		}

		return false

	default:
		// pointers, strings, slices, maps, channels, funcs and interfaces
		return true
	}
}
