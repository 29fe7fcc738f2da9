package logfields

import "log/slog"

// Canonical log field names shared across packages.
const (
	KeyBuildID    = "build_id"
	KeyPath       = "path"
	KeyPage       = "page"
	KeyDepth      = "depth"
	KeyPages      = "pages"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySource     = "source"
	KeyOutput     = "output"
	KeyAddr       = "addr"
	KeyEvent      = "event"
	KeyClients    = "clients"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Depth(d int) slog.Attr           { return slog.Int(KeyDepth, d) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Source(dir string) slog.Attr     { return slog.String(KeySource, dir) }
func Output(dir string) slog.Attr     { return slog.String(KeyOutput, dir) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func Clients(n int) slog.Attr         { return slog.Int(KeyClients, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
