package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shaiso/botline/internal/message"
)

// previewLen — сколько символов сообщения показывать в таблице.
const previewLen = 60

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// QueueDump — содержимое очереди для вывода.
type QueueDump struct {
	Queue    string `json:"queue"`
	Messages []any  `json:"messages"`
}

// Queue выводит содержимое очереди.
// Сообщения, которые не декодируются как Report/Event, выводятся строкой.
func (o *Output) Queue(name string, items [][]byte) {
	dump := QueueDump{Queue: name, Messages: make([]any, 0, len(items))}
	rows := make([][]string, 0, len(items))

	for i, item := range items {
		typ := "-"
		if msg, err := message.Unserialize(item); err == nil {
			dump.Messages = append(dump.Messages, msg)
			typ = string(msg.Type())
		} else {
			dump.Messages = append(dump.Messages, string(item))
		}

		rows = append(rows, []string{strconv.Itoa(i), typ, strconv.Itoa(len(item)), preview(item)})
	}

	if !o.jsonMode {
		fmt.Fprintf(o.w, "%s (%d)\n", name, len(items))
	}
	o.Print([]string{"#", "TYPE", "SIZE", "MESSAGE"}, rows, dump)
}

// preview — первая строка сообщения, обрезанная до previewLen.
func preview(item []byte) string {
	s, _, _ := strings.Cut(string(item), "\n")
	s = strings.ReplaceAll(s, "\t", " ")
	if r := []rune(s); len(r) > previewLen {
		return string(r[:previewLen]) + "..."
	}
	return s
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}
