// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// EXEFIT_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("EXEFIT_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{Writer: os.Stderr})
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.ErrorLevel
	}
	log.SetLevel(lvl)
}

// CustomHandler formats log messages as "<timestamp> <L> <message> k=v ...".
// Writer defaults to stderr.
type CustomHandler struct {
	Writer io.Writer
	mu     sync.Mutex
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", ts.Format("2006-01-02 15:04:05"), strings.ToUpper(e.Level.String()), e.Message)

	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(w, b.String())
	return err
}

// RetryLogger lets go-retryablehttp log through apex. Its leveled logger
// interface passes alternating key/value pairs.
type RetryLogger struct{}

func (RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Error(msg)
}

func (RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Warn(msg)
}

func (RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Debug(msg)
}

func (RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.WithFields(pairs(keysAndValues)).Debug(msg)
}

func pairs(kv []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		if i+1 < len(kv) {
			f[k] = kv[i+1]
		} else {
			f[k] = "(missing)"
		}
	}
	return f
}
