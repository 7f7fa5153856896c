package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat is the display format a command renders its result in.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted command output, text or JSON.
type Printer struct {
	format OutputFormat
	writer io.Writer
}

func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{format: OutputFormat(format), writer: writer}
}

func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"status": "success", "message": message})
	default:
		fmt.Fprintln(p.writer, message)
		return nil
	}
}

func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"status": "error", "error": err.Error()})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) PrintData(data interface{}) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(data)
	default:
		fmt.Fprintf(p.writer, "%v\n", data)
		return nil
	}
}

func (p *Printer) printJSON(data interface{}) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
