package spoke

import "log/slog"

// Tick counts fixed simulation steps. The first step is tick zero
// and every step increments the tick by exactly one.
type Tick int32

// NoTick is used where no tick has been recorded yet.
const NoTick Tick = -1

func (t Tick) LogValue() slog.Value {
	return slog.Int64Value(int64(t))
}
