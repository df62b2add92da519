package logger

import "fmt"

// nop discards every message. Panic still panics so control flow is kept.
type nop struct{}

// Nop returns a Logger that writes nothing
func Nop() Logger {
	return nop{}
}

func (n nop) WithField(string, any) Logger { return n }
func (n nop) WithFields(map[string]any) Logger { return n }
func (n nop) WithError(error) Logger { return n }
func (nop) Print(...any) {}
func (nop) Trace(...any) {}
func (nop) Debug(...any) {}
func (nop) Info(...any) {}
func (nop) Warn(...any) {}
func (nop) Error(...any) {}
func (nop) Fatal(...any) {}
func (nop) Panic(args ...any) { panic(fmt.Sprint(args...)) }
func (nop) Printf(string, ...any) {}
func (nop) Tracef(string, ...any) {}
func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any) {}
func (nop) Warnf(string, ...any) {}
func (nop) Errorf(string, ...any) {}
func (nop) Fatalf(string, ...any) {}
func (nop) Panicf(format string, args ...any) { panic(fmt.Sprintf(format, args...)) }
func (nop) SetLevel(Level) {}
func (nop) GetLevel() Level { return Disabled }
