package logger

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

var (
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger
)

// Fields adalah konteks tambahan yang dicetak sebagai key=value terurut.
type Fields map[string]interface{}

func (f Fields) String() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f[k]))
	}
	return strings.Join(parts, " ")
}

func init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLogger = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// splitFields memisahkan Fields dari argumen format biasa.
func splitFields(v []interface{}) ([]interface{}, string) {
	args := make([]interface{}, 0, len(v))
	var extra []string
	for _, a := range v {
		switch f := a.(type) {
		case Fields:
			if s := f.String(); s != "" {
				extra = append(extra, s)
			}
		case nil:
			// nil diabaikan
		default:
			args = append(args, a)
		}
	}
	return args, strings.Join(extra, " ")
}

func output(l *log.Logger, msg string, err error, v []interface{}) {
	args, extra := splitFields(v)
	line := msg
	if len(args) > 0 {
		line = fmt.Sprintf(msg, args...)
	}
	if err != nil {
		line = line + ": " + err.Error()
	}
	if extra != "" {
		line = line + " | " + extra
	}
	// depth 3: output -> Info/Warn/Error -> caller
	_ = l.Output(3, line)
}

func Info(msg string, v ...interface{}) {
	output(InfoLogger, msg, nil, v)
}

func Warn(msg string, v ...interface{}) {
	output(WarnLogger, msg, nil, v)
}

func Error(msg string, err error, v ...interface{}) {
	output(ErrorLogger, msg, err, v)
}
