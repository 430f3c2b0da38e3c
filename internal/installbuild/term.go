package installbuild

import (
	"io"
	"reflect"

	"github.com/pterm/pterm"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var defaultTerm *Terminal

// DefaultTextPrinter is a printer with a context of language.
// It localizes schema validation messages.
var DefaultTextPrinter = message.NewPrinter(language.English)

func init() {
	defaultTerm = NewTerminal()
	// Keep tests quiet. The app enables output on start.
	defaultTerm.DisableOutput()
}

// Keys of terminal printers.
const (
	printerBasic int = iota
	printerInfo
	printerWarning
	printerSuccess
	printerError
)

// NewTerminal creates a new instance of [Terminal].
func NewTerminal() *Terminal {
	return &Terminal{
		p: []TextPrinter{
			printerBasic:   basicPrinter(pterm.DefaultBasicText),
			printerInfo:    prefixPrinter(pterm.Info),
			printerWarning: prefixPrinter(pterm.Warning),
			printerSuccess: prefixPrinter(pterm.Success),
			printerError:   prefixPrinter(pterm.Error),
		},
		enabled: true,
	}
}

// Printers are copied so that changing a writer doesn't touch pterm globals.
func basicPrinter(p pterm.BasicTextPrinter) TextPrinter { return &ptermPrinter{&p} }
func prefixPrinter(p pterm.PrefixPrinter) TextPrinter   { return &ptermPrinter{&p} }

// TextPrinter contains methods to print formatted text to the console.
type TextPrinter interface {
	// SetOutput sets where the output will be printed.
	SetOutput(w io.Writer)
	// Print formats using the default formats for its operands.
	Print(a ...any)
	// Println formats using the default formats for its operands and appends a newline.
	Println(a ...any)
	// Printf formats according to a format specifier.
	Printf(format string, a ...any)
	// Printfln formats according to a format specifier and appends a newline.
	Printfln(format string, a ...any)
}

type ptermPrinter struct {
	pterm pterm.TextPrinter
}

func (p *ptermPrinter) Print(a ...any)                   { p.pterm.Print(a...) }
func (p *ptermPrinter) Println(a ...any)                 { p.pterm.Println(a...) }
func (p *ptermPrinter) Printf(format string, a ...any)   { p.pterm.Printf(format, a...) }
func (p *ptermPrinter) Printfln(format string, a ...any) { p.pterm.Printfln(format, a...) }

func (p *ptermPrinter) SetOutput(w io.Writer) {
	// Every pterm printer has WithWriter, but the interface doesn't expose it.
	method := reflect.ValueOf(p.pterm).MethodByName("WithWriter")
	if !method.IsValid() {
		panic("WithWriter is not implemented for this pterm.TextPrinter")
	}
	res := method.Call([]reflect.Value{reflect.ValueOf(w)})
	p.pterm = res[0].Interface().(pterm.TextPrinter)
}

// Terminal prints formatted text to the console.
type Terminal struct {
	w       io.Writer
	p       []TextPrinter
	enabled bool
}

// Term returns default [Terminal] to print application messages to the console.
func Term() *Terminal {
	return defaultTerm
}

// EnableOutput enables the output.
func (t *Terminal) EnableOutput() {
	pterm.EnableOutput()
	t.enabled = true
}

// DisableOutput disables the output.
func (t *Terminal) DisableOutput() {
	pterm.DisableOutput()
	t.enabled = false
}

// SetOutput sets an output to target writer.
func (t *Terminal) SetOutput(w io.Writer) {
	t.w = w
	// Printers write through the terminal so it can be muted.
	for i := range t.p {
		t.p[i].SetOutput(t)
	}
}

// Write implements [io.Writer] interface.
func (t *Terminal) Write(p []byte) (int, error) {
	if !t.enabled || t.w == nil {
		return io.Discard.Write(p)
	}
	return t.w.Write(p)
}

// Print implements [TextPrinter] interface.
func (t *Terminal) Print(a ...any) { t.Basic().Print(a...) }

// Println implements [TextPrinter] interface.
func (t *Terminal) Println(a ...any) { t.Basic().Println(a...) }

// Printf implements [TextPrinter] interface.
func (t *Terminal) Printf(format string, a ...any) { t.Basic().Printf(format, a...) }

// Printfln implements [TextPrinter] interface.
func (t *Terminal) Printfln(format string, a ...any) { t.Basic().Printfln(format, a...) }

// Basic returns a default basic printer.
func (t *Terminal) Basic() TextPrinter { return t.p[printerBasic] }

// Info returns a printer with an "info" prefix.
func (t *Terminal) Info() TextPrinter { return t.p[printerInfo] }

// Warning returns a printer with a "warning" prefix.
func (t *Terminal) Warning() TextPrinter { return t.p[printerWarning] }

// Success returns a printer with a "success" prefix.
func (t *Terminal) Success() TextPrinter { return t.p[printerSuccess] }

// Error returns a printer with an "error" prefix.
func (t *Terminal) Error() TextPrinter { return t.p[printerError] }
