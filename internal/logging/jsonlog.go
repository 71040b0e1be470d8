package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

type entry struct {
	Level   string         `json:"level"`
	Time    string         `json:"time"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Out is the log destination; swapped in tests.
var Out io.Writer = os.Stdout

func Log(level, msg string, fields map[string]any) {
	e := entry{Level: level, Time: time.Now().UTC().Format(time.RFC3339Nano), Message: msg, Fields: fields}
	b, _ := json.Marshal(e)
	fmt.Fprintln(Out, string(b))
}

func Info(msg string, fields map[string]any)  { Log("info", msg, fields) }
func Warn(msg string, fields map[string]any)  { Log("warn", msg, fields) }
func Error(msg string, fields map[string]any) { Log("error", msg, fields) }
