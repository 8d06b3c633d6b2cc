package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Level: DEBUG, INFO, WARN, ERROR
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ErrObj описывает ошибку в ERROR записях
type ErrObj struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Entry — одна строка лога
type Entry struct {
	Timestamp  string         `json:"timestamp"`            // ISO 8601 (UTC)
	Level      string         `json:"level"`                // INFO | DEBUG | WARN | ERROR
	Service    string         `json:"service"`              // e.g., group-service
	Action     string         `json:"action"`               // event name, e.g., member_joined
	Message    string         `json:"message"`              // human-readable
	Hostname   string         `json:"hostname"`             // container/host
	RequestID  string         `json:"request_id,omitempty"` // ride request id
	GroupID    string         `json:"group_id,omitempty"`   // ride group id
	Error      *ErrObj        `json:"error,omitempty"`
	Additional map[string]any `json:"additional,omitempty"`
}

// reserved keys never copied from base fields into Additional
var reserved = map[string]struct{}{
	"timestamp": {}, "level": {}, "service": {}, "action": {},
	"message": {}, "hostname": {}, "request_id": {}, "group_id": {},
}

type Logger struct {
	service  string
	minLevel Level
	hostname string
	pretty   bool

	outWriter io.Writer
	errWriter io.Writer
	mu        sync.Mutex

	files []io.Closer
}

// NewLogger пишет в stdout/stderr, уровень из LOG_LEVEL
func NewLogger(service string) *Logger {
	return New(service, ParseLevel(os.Getenv("LOG_LEVEL")), os.Stdout, os.Stderr)
}

// New собирает логгер с явными writer'ами (используется в тестах)
func New(service string, min Level, out, errOut io.Writer) *Logger {
	h, _ := os.Hostname()
	return &Logger{
		service:   service,
		minLevel:  min,
		hostname:  h,
		pretty:    strings.ToLower(os.Getenv("LOG_PRETTY")) == "true",
		outWriter: out,
		errWriter: errOut,
	}
}

// Nop отбрасывает все записи
func Nop() *Logger {
	return New("nop", LevelError+1, io.Discard, io.Discard)
}

// NewLoggerWithOptions supports minLevel and optional fileDir (dev).
// If fileDir != "", logs are duplicated into <fileDir>/<service>.log and <service>.error.log.
func NewLoggerWithOptions(service, minLevelStr, fileDir string) (*Logger, error) {
	l := New(service, ParseLevel(minLevelStr), os.Stdout, os.Stderr)
	if fileDir == "" {
		return l, nil
	}

	if err := os.MkdirAll(fileDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	infoF, err := os.OpenFile(filepath.Join(fileDir, service+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open info log: %w", err)
	}
	errF, err := os.OpenFile(filepath.Join(fileDir, service+".error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		_ = infoF.Close()
		return nil, fmt.Errorf("open error log: %w", err)
	}

	l.outWriter = io.MultiWriter(os.Stdout, infoF)
	l.errWriter = io.MultiWriter(os.Stderr, infoF, errF)
	l.files = []io.Closer{infoF, errF}
	return l, nil
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.files {
		_ = f.Close()
	}
	l.files = nil
}

func (l *Logger) Debug(e Entry) { l.log(LevelDebug, e, nil) }
func (l *Logger) Info(e Entry)  { l.log(LevelInfo, e, nil) }
func (l *Logger) Warn(e Entry)  { l.log(LevelWarn, e, nil) }
func (l *Logger) Error(e Entry) { l.log(LevelError, e, nil) }
func (l *Logger) Fatal(e Entry) {
	if e.Error == nil {
		e.Error = &ErrObj{Msg: e.Message, Stack: string(debug.Stack())}
	} else if e.Error.Stack == "" {
		e.Error.Stack = string(debug.Stack())
	}
	l.log(LevelError, e, nil)
	os.Exit(1)
}

// WithFields returns a shallow "context" logger that auto-merges Additional fields.
func (l *Logger) WithFields(base map[string]any) *ContextLogger {
	return &ContextLogger{parent: l, base: base}
}

// WithContext attaches request_id and group_id.
func (l *Logger) WithContext(requestID, groupID string) *ContextLogger {
	base := map[string]any{}
	if requestID != "" {
		base["request_id"] = requestID
	}
	if groupID != "" {
		base["group_id"] = groupID
	}
	return &ContextLogger{parent: l, base: base}
}

type ContextLogger struct {
	parent *Logger
	base   map[string]any
}

func (c *ContextLogger) Debug(e Entry) { c.parent.log(LevelDebug, e, c.base) }
func (c *ContextLogger) Info(e Entry)  { c.parent.log(LevelInfo, e, c.base) }
func (c *ContextLogger) Warn(e Entry)  { c.parent.log(LevelWarn, e, c.base) }
func (c *ContextLogger) Error(e Entry) { c.parent.log(LevelError, e, c.base) }

func (l *Logger) log(level Level, e Entry, base map[string]any) {
	if level < l.minLevel {
		return
	}

	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if e.Level == "" {
		e.Level = level.String()
	}
	if e.Service == "" {
		e.Service = l.service
	}
	if e.Hostname == "" {
		e.Hostname = l.hostname
	}
	e = mergeEntry(e, base)

	if e.Additional == nil {
		e.Additional = make(map[string]any)
	}
	if _, ok := e.Additional["caller"]; !ok {
		if pc, file, line, ok := runtime.Caller(2); ok {
			e.Additional["caller"] = fmt.Sprintf("%s:%d (%s)", filepath.Base(file), line, funcName(runtime.FuncForPC(pc)))
		}
	}

	var (
		b   []byte
		err error
	)
	if l.pretty {
		b, err = json.MarshalIndent(e, "", "  ")
	} else {
		b, err = json.Marshal(e)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		fmt.Fprintf(l.errWriter, `{"timestamp":"%s","level":"ERROR","service":"%s","message":"failed to marshal log: %v"}`+"\n",
			time.Now().UTC().Format(time.RFC3339Nano), l.service, err)
		return
	}

	writer := l.outWriter
	if level == LevelError {
		writer = l.errWriter
	}
	_, _ = writer.Write(append(b, '\n'))
}

func funcName(fn *runtime.Func) string {
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

func mergeEntry(e Entry, base map[string]any) Entry {
	if base == nil {
		return e
	}
	if e.RequestID == "" {
		e.RequestID, _ = base["request_id"].(string)
	}
	if e.GroupID == "" {
		e.GroupID, _ = base["group_id"].(string)
	}
	for k, v := range base {
		if _, skip := reserved[k]; skip {
			continue
		}
		if e.Additional == nil {
			e.Additional = map[string]any{}
		}
		e.Additional[k] = v
	}
	return e
}
