package main

import (
	"fmt"

	"github.com/rs/zerolog"
)

// zerologAdapter implements removinator.Logger on top of zerolog.
type zerologAdapter struct {
	log zerolog.Logger
}

func (z zerologAdapter) Debug(msg string, kv ...interface{}) {
	withFields(z.log.Debug(), kv).Msg(msg)
}

func (z zerologAdapter) Info(msg string, kv ...interface{}) {
	withFields(z.log.Info(), kv).Msg(msg)
}

func (z zerologAdapter) Error(msg string, kv ...interface{}) {
	withFields(z.log.Error(), kv).Msg(msg)
}

func withFields(ev *zerolog.Event, kv []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		switch v := kv[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	if len(kv)%2 == 1 {
		ev = ev.Interface("extra", kv[len(kv)-1])
	}
	return ev
}
