package logger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// sink is one log destination. A module listed in modules uses that level
// on this sink only, so a long build can keep builder debug records in the
// JSON file while the console stays at info.
type sink struct {
	handler slog.Handler
	level   slog.Level
	modules map[string]slog.Level
}

// floor is the lowest level the sink accepts for any module.
func (s sink) floor() slog.Level {
	lowest := s.level
	for _, l := range s.modules {
		lowest = min(lowest, l)
	}
	return lowest
}

// lookupModuleLevel returns the level of module or of its closest parent,
// "builder.parse" falls back to "builder".
func lookupModuleLevel(levels map[string]slog.Level, module string) (slog.Level, bool) {
	for m := module; m != ""; {
		if l, ok := levels[m]; ok {
			return l, true
		}
		i := strings.LastIndexByte(m, '.')
		if i < 0 {
			break
		}
		m = m[:i]
	}
	return 0, false
}

// sinkRouter routes each record to the sinks accepting its module and level.
// base gives the level of a module on sinks without an override.
type sinkRouter struct {
	sinks []sink
	base  func(module string) slog.Level
}

func newSinkRouter(base func(string) slog.Level, sinks ...sink) *sinkRouter {
	return &sinkRouter{sinks: sinks, base: base}
}

func (r *sinkRouter) accepts(s sink, module string, level slog.Level) bool {
	if l, ok := lookupModuleLevel(s.modules, module); ok {
		return level >= l
	}
	return level >= max(s.level, r.base(module))
}

// moduleFloor is the lowest level any sink accepts for module. Module
// loggers use it to skip building records nobody will write.
func (r *sinkRouter) moduleFloor(module string) slog.Level {
	lowest := r.base(module)
	for _, s := range r.sinks {
		if l, ok := lookupModuleLevel(s.modules, module); ok {
			lowest = min(lowest, l)
		}
	}
	return lowest
}

func (r *sinkRouter) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range r.sinks {
		if level >= s.floor() && s.handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Handler requires the record by value
func (r *sinkRouter) Handle(ctx context.Context, record slog.Record) error {
	module := recordModule(&record)
	var errs []error
	for _, s := range r.sinks {
		if !r.accepts(s, module, record.Level) {
			continue
		}
		if err := s.handler.Handle(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *sinkRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return r.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (r *sinkRouter) WithGroup(name string) slog.Handler {
	return r.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (r *sinkRouter) derive(fn func(slog.Handler) slog.Handler) *sinkRouter {
	sinks := make([]sink, len(r.sinks))
	for i, s := range r.sinks {
		s.handler = fn(s.handler)
		sinks[i] = s
	}
	return &sinkRouter{sinks: sinks, base: r.base}
}

func recordModule(record *slog.Record) string {
	var module string
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == moduleKey {
			module = a.Value.String()
			return false
		}
		return true
	})
	return module
}
