package logger

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger/LogEntry/Fields 暴露底层类型，避免调用方直接依赖 logrus 包。
type Logger = logrus.Logger
type LogEntry = logrus.Entry
type Fields = logrus.Fields

// DefaultLogPath 默认日志文件路径。
const DefaultLogPath = "logs/coding-agent.log"

// FileOptions 控制日志文件轮转。
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

var rootLogger = logrus.StandardLogger()

// Configure 设置全局日志格式、级别与 caller 输出。未知级别回退为 info。
func Configure(level string) {
	root().SetReportCaller(true)
	root().SetFormatter(PlainFormatter{})
	root().SetLevel(ParseLevel(level))
}

// ParseLevel 解析配置中的日志级别字符串。
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// SetupFile 将全局日志输出重定向到轮转文件（默认 logs/coding-agent.log）。
// TUI 占用终端，日志不能写到 stderr。返回 closer 以便调用方清理。
func SetupFile(opts FileOptions) (io.Closer, string, error) {
	path := opts.Path
	if path == "" {
		path = DefaultLogPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = 3
	}
	w := &lumberjack.Logger{
		Filename:   abs,
		MaxSize:    maxSize,
		MaxBackups: backups,
	}
	root().SetOutput(w)
	return w, abs, nil
}

// Root 返回全局共享的 logger。
func Root() *Logger {
	return root()
}

// SetRoot 覆盖全局 logger，传入 nil 时重置为标准 logger。
func SetRoot(l *Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	rootLogger = l
}

// Entry 返回未附加字段的全局入口。
func Entry() *LogEntry {
	return logrus.NewEntry(root())
}

// Named 为指定组件创建入口，统一 component 字段。
func Named(component string) *LogEntry {
	entry := Entry()
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

func root() *logrus.Logger {
	if rootLogger == nil {
		rootLogger = logrus.StandardLogger()
	}
	return rootLogger
}

// PlainFormatter 统一输出格式：caller [timestamp] [LEVEL] [component] message fields。
type PlainFormatter struct{}

// Format 实现 logrus Formatter。
func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	timestamp := entry.Time.UTC().Format(time.RFC3339Nano)
	level := strings.ToUpper(entry.Level.String())
	component := ""
	if val, ok := entry.Data["component"].(string); ok && val != "" {
		component = val
	}
	caller := formatCaller(entry)
	fields := formatFields(entry.Data)

	parts := make([]string, 0, 6)
	if caller != "" {
		parts = append(parts, caller)
	}
	parts = append(parts, fmt.Sprintf("[%s]", timestamp))
	parts = append(parts, fmt.Sprintf("[%s]", level))
	if component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	parts = append(parts, entry.Message)
	if fields != "" {
		parts = append(parts, fields)
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}

func formatCaller(entry *logrus.Entry) string {
	if entry == nil {
		return ""
	}
	if entry.HasCaller() && entry.Caller != nil {
		return fmt.Sprintf("%s:%d", shortenFilePath(entry.Caller.File), entry.Caller.Line)
	}
	if caller, ok := entry.Data["caller"].(string); ok && caller != "" {
		return caller
	}
	return ""
}

func formatFields(fields logrus.Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "component" || k == "caller" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

func shortenFilePath(file string) string {
	file = filepath.ToSlash(file)
	if idx := strings.Index(file, "/internal/"); idx != -1 {
		return file[idx+1:]
	}
	if idx := strings.Index(file, "/cmd/"); idx != -1 {
		return file[idx+1:]
	}
	return filepath.Base(file)
}
